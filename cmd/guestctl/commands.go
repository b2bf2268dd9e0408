package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"guestcheckin/internal/ethsig"
)

// keyEnv is read when --key is not given.
const keyEnv = "GUESTCTL_KEY"

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "guestctl",
		Short:        "Organizer tooling for guest check-in registries",
		Long:         `guestctl generates keys, computes attendee digests and signs or verifies check-in authorizations offline.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(
		newKeygenCmd(),
		newAddressCmd(),
		newDigestCmd(),
		newSignCmd(),
		newRecoverCmd(),
		newSignMessageCmd(),
		newCreateAddressCmd(),
	)
	return root
}

func loadKey(cmd *cobra.Command) (*ethsig.PrivateKey, error) {
	raw, _ := cmd.Flags().GetString("key")
	if raw == "" {
		raw = os.Getenv(keyEnv)
	}
	if raw == "" {
		return nil, fmt.Errorf("private key required: pass --key or set %s", keyEnv)
	}
	return ethsig.ParsePrivateKey(raw)
}

func addressFlag(cmd *cobra.Command, name string) (ethsig.Address, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return ethsig.Address{}, fmt.Errorf("--%s is required", name)
	}
	addr, err := ethsig.ParseAddress(raw)
	if err != nil {
		return ethsig.Address{}, fmt.Errorf("--%s: %w", name, err)
	}
	return addr, nil
}

// attendeeTarget reads the registry, name and attendee flags shared by the
// digest, sign and recover commands.
type attendeeTarget struct {
	registry ethsig.Address
	name     string
	attendee ethsig.Address
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("registry", "", "registry address")
	cmd.Flags().String("name", "", "event name exactly as registered")
	cmd.Flags().String("attendee", "", "attendee address")
}

func readTarget(cmd *cobra.Command) (attendeeTarget, error) {
	var t attendeeTarget
	var err error
	if t.registry, err = addressFlag(cmd, "registry"); err != nil {
		return t, err
	}
	if t.attendee, err = addressFlag(cmd, "attendee"); err != nil {
		return t, err
	}
	t.name, _ = cmd.Flags().GetString("name")
	return t, nil
}

func (t attendeeTarget) signedDigest() (ethsig.Hash, ethsig.Hash) {
	message := ethsig.MessageDigest(t.registry, t.name, t.attendee)
	return message, ethsig.SignedDigest(message)
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new secp256k1 key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ethsig.GenerateKey()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "private_key: %s\n", ethsig.EncodeHex(key.Serialize()))
			fmt.Fprintf(out, "address:     %s\n", ethsig.KeyAddress(key).Hex())
			return nil
		},
	}
}

func newAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Print the address of a private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ethsig.KeyAddress(key).Hex())
			return nil
		},
	}
	cmd.Flags().String("key", "", "hex private key (default $"+keyEnv+")")
	return cmd
}

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Compute the message and signed digests for an attendee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTarget(cmd)
			if err != nil {
				return err
			}
			message, signed := t.signedDigest()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "message_digest: %s\n", message.Hex())
			fmt.Fprintf(out, "signed_digest:  %s\n", signed.Hex())
			return nil
		},
	}
	addTargetFlags(cmd)
	return cmd
}

func newSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Authorize an attendee: sign its signed digest with the organizer key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			t, err := readTarget(cmd)
			if err != nil {
				return err
			}
			_, signed := t.signedDigest()
			fmt.Fprintln(cmd.OutOrStdout(), ethsig.EncodeHex(ethsig.Sign(key, signed)))
			return nil
		},
	}
	cmd.Flags().String("key", "", "hex private key (default $"+keyEnv+")")
	addTargetFlags(cmd)
	return cmd
}

func newRecoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover the signer of an attendee authorization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTarget(cmd)
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetString("signature")
			sig, err := ethsig.DecodeHex(raw)
			if err != nil {
				return fmt.Errorf("--signature: %w", err)
			}
			_, signed := t.signedDigest()
			signer, err := ethsig.RecoverSigner(signed, sig)
			if err != nil {
				return err
			}
			if signer.IsZero() {
				return errors.New("signature does not recover to any address")
			}
			fmt.Fprintln(cmd.OutOrStdout(), signer.Hex())
			return nil
		},
	}
	addTargetFlags(cmd)
	cmd.Flags().String("signature", "", "hex signature (r ‖ s ‖ v)")
	return cmd
}

func newSignMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-message <text>",
		Short: "Sign text with the personal-message prefix (e.g. a login challenge)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := loadKey(cmd)
			if err != nil {
				return err
			}
			sig := ethsig.Sign(key, ethsig.TextHash([]byte(args[0])))
			fmt.Fprintln(cmd.OutOrStdout(), ethsig.EncodeHex(sig))
			return nil
		},
	}
	cmd.Flags().String("key", "", "hex private key (default $"+keyEnv+")")
	return cmd
}

func newCreateAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry-address",
		Short: "Predict the address of the registry created at a factory nonce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			factory, err := addressFlag(cmd, "factory")
			if err != nil {
				return err
			}
			nonce, _ := cmd.Flags().GetUint64("nonce")
			fmt.Fprintln(cmd.OutOrStdout(), ethsig.CreateAddress(factory, nonce).Hex())
			return nil
		},
	}
	cmd.Flags().String("factory", "", "factory address")
	cmd.Flags().Uint64("nonce", 1, "creation nonce (the first registry uses 1)")
	return cmd
}
