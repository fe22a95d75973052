// Package randompkg provides functionality for generating random application data.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/go-divvy/divvy/pkg/moneypkg"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Int64Between generates a random integer between min and max inclusive.
func Int64Between(min, max int64) int64 {
	return min + Intn(int(max-min+1))
}

// String generates a random string of length n.
func String(n int) string {
	var sb strings.Builder

	k := len(alphabet)

	for i := 0; i < n; i++ {
		c := alphabet[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// Name generates a random display name.
func Name() string {
	return String(6)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}

// AmountBetween generates a random money amount between min and max whole
// currency units, with random cents.
func AmountBetween(min, max int64) moneypkg.Money {
	units := decimal.New(Int64Between(min, max), 0)
	cents := decimal.New(Int64Between(0, 99), -2)

	amount, err := moneypkg.Parse(units.Add(cents).String())
	if err != nil {
		panic(err)
	}

	return amount
}

// Currency generates a random currency code.
func Currency() string {
	currencies := []string{"USD", "EUR", "GBP"}
	return currencies[Intn(len(currencies))]
}
