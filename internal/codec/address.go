package codec

import (
	"regexp"

	"github.com/ethereum/go-ethereum/common"
)

var (
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

	zeroAddress     = common.Address{}
	sentinelAddress = common.BytesToAddress([]byte{1})
)

// AddressOptions relaxes the default rejection of the zero and sentinel
// addresses.
type AddressOptions struct {
	AllowZero     bool
	AllowSentinel bool
}

// ValidateAddress checks that input is an EIP-55 checksummed address and
// returns it unchanged. The checksum is always verified first, so the zero
// and sentinel special cases never bypass it.
func ValidateAddress(input string, opts AddressOptions) (string, error) {
	if !IsChecksumAddress(input) {
		return "", newError(ErrMalformedAddress, input)
	}

	switch common.HexToAddress(input) {
	case zeroAddress:
		if !opts.AllowZero {
			return "", newError(ErrZeroAddressRejected, input)
		}
	case sentinelAddress:
		if !opts.AllowSentinel {
			return "", newError(ErrSentinelAddressRejected, input)
		}
	}
	return input, nil
}

// IsChecksumAddress reports whether input is a 0x-prefixed 40 digit hex
// string whose letter casing matches its EIP-55 checksum.
func IsChecksumAddress(input string) bool {
	if !addressPattern.MatchString(input) {
		return false
	}
	return common.HexToAddress(input).Hex() == input
}

// ChecksumAddress returns the checksummed form of any 20 byte hex address,
// whatever its casing.
func ChecksumAddress(input string) (string, error) {
	if !common.IsHexAddress(input) {
		return "", newError(ErrMalformedAddress, input)
	}
	return common.HexToAddress(input).Hex(), nil
}

// AddressFromBytes checksums a raw 20 byte address.
func AddressFromBytes(b []byte) (string, error) {
	if len(b) != common.AddressLength {
		return "", newError(ErrMalformedAddress, EncodeHex(b))
	}
	return common.BytesToAddress(b).Hex(), nil
}
