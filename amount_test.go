package nftstake_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/cordialsys/nftstake"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type AmountTestSuite struct {
	suite.Suite
}

func TestAmount(t *testing.T) {
	suite.Run(t, new(AmountTestSuite))
}

func (s *AmountTestSuite) TestToHuman() {
	require := s.Require()
	require.Equal("150000", nftstake.Amount(150000).ToHuman(0).String())
	require.Equal("0.00015", nftstake.Amount(150000).ToHuman(9).String())
	require.Equal("18446744073.709551615", nftstake.Amount(math.MaxUint64).ToHuman(9).String())
}

func (s *AmountTestSuite) TestToAmount() {
	require := s.Require()
	human, err := nftstake.NewAmountHumanFromStr("1.5")
	require.NoError(err)
	amount, err := human.ToAmount(9)
	require.NoError(err)
	require.EqualValues(1_500_000_000, amount)

	_, err = human.ToAmount(0)
	require.ErrorContains(err, "decimals")

	negative, err := nftstake.NewAmountHumanFromStr("-1")
	require.NoError(err)
	_, err = negative.ToAmount(0)
	require.ErrorContains(err, "out of range")

	_, err = nftstake.NewAmountHumanFromStr("abc")
	require.Error(err)
}

func (s *AmountTestSuite) TestAdd() {
	require := s.Require()
	sum, ok := nftstake.Amount(50000).Add(100000)
	require.True(ok)
	require.EqualValues(150000, sum)
	_, ok = nftstake.Amount(math.MaxUint64).Add(1)
	require.False(ok)
}

func (s *AmountTestSuite) TestJSON() {
	require := s.Require()
	balance := nftstake.NewBalance("acct", "mint", 1234, 2)
	bz, err := json.Marshal(balance)
	require.NoError(err)
	require.JSONEq(`{"account":"acct","mint":"mint","amount":"1234","human":"12.34","decimals":2}`, string(bz))

	var decoded nftstake.Balance
	require.NoError(json.Unmarshal(bz, &decoded))
	require.EqualValues(1234, decoded.Amount)
	require.Equal("12.34", decoded.Human.String())

	var amount nftstake.Amount
	require.Error(json.Unmarshal([]byte(`"-5"`), &amount))
}

func (s *AmountTestSuite) TestYAML() {
	require := s.Require()
	var value struct {
		Amount nftstake.AmountHuman `yaml:"amount"`
	}
	require.NoError(yaml.Unmarshal([]byte(`amount: "0.25"`), &value))
	require.Equal("0.25", value.Amount.String())

	bz, err := yaml.Marshal(value)
	require.NoError(err)
	require.Contains(string(bz), "0.25")
}
