package fulfillment

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const pinSpace = 10000

// newDeliveryPIN - одноразовый 4-значный PIN вручения.
func newDeliveryPIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinSpace))
	if err != nil {
		return "", fmt.Errorf("generate delivery pin: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// newOrderNumber - человекочитаемый номер вида 260415-1032-4821.
func newOrderNumber(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinSpace))
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("%s-%04d", now.UTC().Format("060102-1504"), n.Int64()), nil
}

func pinMatches(expected, given string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}
