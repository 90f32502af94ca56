package sale

import "math/big"

// Conversion math. All divisions truncate toward zero: a buyer receives the
// floor of the exact ratio and any fractional remainder stays with the
// payment.

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// tokensForNative converts a native payment into sale-token base units:
// payment * 10^tokenDecimals / price.
func tokensForNative(payment, price *big.Int, tokenDecimals uint8) *big.Int {
	out := new(big.Int).Mul(payment, pow10(tokenDecimals))
	return out.Quo(out, price)
}

// normalizeSecondary rescales raw, expressed with hint fractional digits,
// into the secondary asset's native precision.
func normalizeSecondary(raw *big.Int, hint, assetDecimals uint8) *big.Int {
	switch {
	case hint == assetDecimals:
		return new(big.Int).Set(raw)
	case hint < assetDecimals:
		return new(big.Int).Mul(raw, pow10(assetDecimals-hint))
	default:
		return new(big.Int).Quo(raw, pow10(hint-assetDecimals))
	}
}

// tokensForSecondary converts a normalized secondary amount into sale-token
// base units: normalized * rate * 10^tokenDecimals / (price * 10^rateDecimals).
func tokensForSecondary(normalized, rate, price *big.Int, tokenDecimals, rateDecimals uint8) *big.Int {
	num := new(big.Int).Mul(normalized, rate)
	num.Mul(num, pow10(tokenDecimals))
	den := new(big.Int).Mul(price, pow10(rateDecimals))
	return num.Quo(num, den)
}
