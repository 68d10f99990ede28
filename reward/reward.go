package reward

import (
	"context"

	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/program"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// DefaultRate is the reward issued per second of staking.
const DefaultRate uint64 = 100

// Calculator accrues rewards linearly in time.
type Calculator struct {
	Rate uint64
}

func NewCalculator(rate uint64) Calculator {
	if rate == 0 {
		rate = DefaultRate
	}
	return Calculator{Rate: rate}
}

// Accrue returns Rate * (now - lastStaked).
func (c Calculator) Accrue(now int64, lastStaked int64) (uint64, error) {
	if now < lastStaked {
		return 0, errors.Errorf(errors.ArithmeticOverflow, "clock %d is before last stake %d", now, lastStaked)
	}
	// the true difference always fits in a uint64
	elapsed := uint64(now - lastStaked)
	total, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(c.Rate), uint256.NewInt(elapsed))
	if overflow || !total.IsUint64() {
		return 0, errors.Errorf(errors.ArithmeticOverflow, "reward %d * %d exceeds u64", c.Rate, elapsed)
	}
	return total.Uint64(), nil
}

// Issuer mints rewards through the token program, signing as the mint
// authority capability.
type Issuer struct {
	runtime      program.Runtime
	tokenProgram solana.PublicKey
}

func NewIssuer(runtime program.Runtime, tokenProgram solana.PublicKey) *Issuer {
	return &Issuer{runtime: runtime, tokenProgram: tokenProgram}
}

func (i *Issuer) Issue(ctx context.Context, mint solana.PublicKey, destination solana.PublicKey, authority derive.Capability, amount uint64) error {
	built, err := token.NewMintToInstruction(amount, mint, destination, authority.Address, nil).ValidateAndBuild()
	if err != nil {
		return errors.IssuanceFailedf("could not build mint: %v", err)
	}
	ix, err := program.Retarget(built, i.tokenProgram)
	if err != nil {
		return errors.IssuanceFailedf("could not encode mint: %v", err)
	}
	log := logrus.WithFields(logrus.Fields{
		"mint":        mint.String(),
		"destination": destination.String(),
		"amount":      amount,
	})
	if err := i.runtime.Invoke(ctx, ix, authority.SignerSeeds()); err != nil {
		log.WithError(err).Warn("reward issuance rejected")
		return errors.IssuanceFailedf("mint of %d to %s rejected: %v", amount, destination, err)
	}
	log.Debug("issued reward")
	return nil
}
