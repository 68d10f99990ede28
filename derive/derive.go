package derive

import (
	"strings"

	"github.com/cordialsys/nftstake/errors"
	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

// Domain tags separating the address spaces derived by the program.
const (
	TagStake     = "stake"
	TagAuthority = "authority"
	TagMint      = "mint"
)

const DefaultCacheSize = 1024

// Capability is a program derived address and the seeds that sign for it.
type Capability struct {
	Address solana.PublicKey
	Bump    uint8
	Seeds   [][]byte
}

// SignerSeeds returns the seeds plus bump, as presented to the ledger when
// the program signs for this address.
func (c Capability) SignerSeeds() [][]byte {
	seeds := make([][]byte, 0, len(c.Seeds)+1)
	seeds = append(seeds, c.Seeds...)
	return append(seeds, []byte{c.Bump})
}

// Deriver computes the capability addresses of a single program.
// It is safe for concurrent use.
type Deriver struct {
	programID solana.PublicKey
	cache     *lru.Cache
}

func NewDeriver(programID solana.PublicKey, cacheSize int) (*Deriver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Deriver{programID: programID, cache: cache}, nil
}

func (d *Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

func Seeds(tag string, inputs ...solana.PublicKey) [][]byte {
	seeds := make([][]byte, 0, len(inputs)+1)
	seeds = append(seeds, []byte(tag))
	for _, input := range inputs {
		key := input
		seeds = append(seeds, key[:])
	}
	return seeds
}

func cacheKey(tag string, inputs []solana.PublicKey) string {
	var b strings.Builder
	b.WriteString(tag)
	for _, input := range inputs {
		b.WriteByte('/')
		b.Write(input[:])
	}
	return b.String()
}

// Derive finds the address for tag and inputs, searching bumps downward from
// 255 until the address falls off the ed25519 curve.
func (d *Deriver) Derive(tag string, inputs ...solana.PublicKey) (Capability, error) {
	key := cacheKey(tag, inputs)
	if cached, ok := d.cache.Get(key); ok {
		return cached.(Capability), nil
	}
	seeds := Seeds(tag, inputs...)
	address, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return Capability{}, errors.InvalidDerivedAddressf("could not derive %q address: %v", tag, err)
	}
	capability := Capability{
		Address: address,
		Bump:    bump,
		Seeds:   seeds,
	}
	d.cache.Add(key, capability)
	return capability, nil
}

// Verify recomputes the address for tag and inputs and compares it to supplied.
func (d *Deriver) Verify(tag string, inputs []solana.PublicKey, supplied solana.PublicKey) (Capability, error) {
	capability, err := d.Derive(tag, inputs...)
	if err != nil {
		return Capability{}, err
	}
	if !capability.Address.Equals(supplied) {
		logrus.WithFields(logrus.Fields{
			"tag":      tag,
			"expected": capability.Address.String(),
			"supplied": supplied.String(),
		}).Debug("invalid seeds for derived address")
		return Capability{}, errors.InvalidDerivedAddressf("%s account %s does not match derived address %s", tag, supplied, capability.Address)
	}
	return capability, nil
}

// StakeRecord is the address of the record for an (owner, asset) pair.
func (d *Deriver) StakeRecord(owner, asset solana.PublicKey) (Capability, error) {
	return d.Derive(TagStake, owner, asset)
}

// FreezeAuthority is the delegate that freezes staked assets.
func (d *Deriver) FreezeAuthority() (Capability, error) {
	return d.Derive(TagAuthority)
}

// MintAuthority is the authority of the reward mint.
func (d *Deriver) MintAuthority() (Capability, error) {
	return d.Derive(TagMint)
}

// VerifySigner reports whether signerSeeds (including the bump) derive
// address under programID.
func VerifySigner(programID solana.PublicKey, signerSeeds [][]byte, address solana.PublicKey) bool {
	derived, err := solana.CreateProgramAddress(signerSeeds, programID)
	if err != nil {
		return false
	}
	return derived.Equals(address)
}
