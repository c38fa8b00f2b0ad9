package safeeth

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/zircuit-multisig/safe-eth-go/internal/codec"
)

var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate Ethereum wire values",
	Long:  `Validate and normalize addresses, hex strings, hashes, signatures, transactions and Safe multisig transactions.`,
}

var validateAddressCmd = &cobra.Command{
	Use:   "address [address]",
	Short: "Check that an address is EIP-55 checksummed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		allowZero, _ := cmd.Flags().GetBool("allow-zero")
		allowSentinel, _ := cmd.Flags().GetBool("allow-sentinel")

		address, err := codec.ValidateAddress(args[0], codec.AddressOptions{
			AllowZero:     allowZero,
			AllowSentinel: allowSentinel,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), address)
		return nil
	},
}

var checksumCmd = &cobra.Command{
	Use:   "checksum [address]",
	Short: "Print the EIP-55 checksummed form of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := codec.ChecksumAddress(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), address)
		return nil
	},
}

var validateHexCmd = &cobra.Command{
	Use:   "hex [value]",
	Short: "Normalize a hex byte string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minLength, _ := cmd.Flags().GetInt("min-length")
		maxLength, _ := cmd.Flags().GetInt("max-length")
		allowBlank, _ := cmd.Flags().GetBool("allow-blank")
		if minLength < 0 || maxLength < 0 {
			return fmt.Errorf("lengths must not be negative")
		}

		b, err := codec.HexCodec{MinLength: minLength, MaxLength: maxLength, AllowBlank: allowBlank}.Decode(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), codec.EncodeHex(b))
		return nil
	},
}

var validateHashCmd = &cobra.Command{
	Use:   "hash [value]",
	Short: "Check that a value is a 32 byte hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := codec.DecodeHash(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash.Hex())
		return nil
	},
}

var validateSignatureCmd = &cobra.Command{
	Use:   "signature [v] [r] [s]",
	Short: "Range check ECDSA signature components",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		errs := codec.FieldErrors{}
		values := make([]*big.Int, 3)
		for i, field := range []string{"v", "r", "s"} {
			n, err := codec.ParseDecimal(args[i])
			if err != nil {
				errs[field] = err
				continue
			}
			values[i] = n
		}
		if len(errs) > 0 {
			return errs
		}

		sig, err := codec.ValidateSignature(values[0], values[1], values[2])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), sig)
	},
}

var validateTransactionCmd = &cobra.Command{
	Use:   "transaction [json|-]",
	Short: "Validate a transaction and print it in the other encoding",
	Long: `Validate a transaction given as JSON, or read from stdin with "-".
The numeric encoding is converted to the string encoding; with --string-form
the string encoding is converted back to the numeric one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readJSONArg(cmd, args[0])
		if err != nil {
			return err
		}

		stringForm, _ := cmd.Flags().GetBool("string-form")
		if stringForm {
			resp, err := codec.DecodeTransactionResponse(data)
			if err != nil {
				return err
			}
			tx, err := resp.Transaction()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		}

		tx, err := codec.DecodeTransaction(data)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), tx.Response())
	},
}

var validateSafeTransactionCmd = &cobra.Command{
	Use:   "safe-transaction [json|-]",
	Short: "Validate a Safe multisig transaction",
	Long: `Validate a Safe multisig transaction given as JSON, or read from stdin with "-".
With --estimate only the fields of a gas estimation request are expected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readJSONArg(cmd, args[0])
		if err != nil {
			return err
		}

		estimate, _ := cmd.Flags().GetBool("estimate")
		if estimate {
			tx, err := codec.DecodeSafeMultisigEstimateTx(data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tx)
		}

		tx, err := codec.DecodeSafeMultisigTx(data)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), tx)
	},
}

// readJSONArg returns arg itself, or stdin when arg is "-".
func readJSONArg(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	validateAddressCmd.Flags().Bool("allow-zero", false, "Accept the zero address")
	validateAddressCmd.Flags().Bool("allow-sentinel", false, "Accept the 0x...01 sentinel address")

	validateHexCmd.Flags().Int("min-length", 0, "Minimum length in bytes, 0 for none")
	validateHexCmd.Flags().Int("max-length", 0, "Maximum length in bytes, 0 for none")
	validateHexCmd.Flags().Bool("allow-blank", false, "Accept an empty value")

	validateTransactionCmd.Flags().Bool("string-form", false, "Input uses the string encoding")
	validateSafeTransactionCmd.Flags().Bool("estimate", false, "Input is a gas estimation request")

	ValidateCmd.AddCommand(validateAddressCmd)
	ValidateCmd.AddCommand(checksumCmd)
	ValidateCmd.AddCommand(validateHexCmd)
	ValidateCmd.AddCommand(validateHashCmd)
	ValidateCmd.AddCommand(validateSignatureCmd)
	ValidateCmd.AddCommand(validateTransactionCmd)
	ValidateCmd.AddCommand(validateSafeTransactionCmd)
}
