package service

import "regexp"

var (
	btcLegacyRe = regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`)
	btcBech32Re = regexp.MustCompile(`^bc1[a-z0-9]{39,87}$`)
	ethRe       = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// ValidateBitcoinAddress accepts legacy (1...), P2SH (3...) and native
// segwit (bc1...) address formats.
func ValidateBitcoinAddress(address string) bool {
	return btcLegacyRe.MatchString(address) || btcBech32Re.MatchString(address)
}

func ValidateEthereumAddress(address string) bool {
	return ethRe.MatchString(address)
}
