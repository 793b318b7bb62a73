// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <scenario-file> <output-file>",
	Short: "Encrypt a scenario file with a passphrase",
	Long:  `Encrypt reads a plaintext scenario YAML file and writes an age-encrypted copy, so a household's financial plan can be stored or shared at rest without exposing it in plaintext.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase("Passphrase: ", true)
		if err != nil {
			return err
		}

		recipient, err := age.NewScryptRecipient(passphrase)
		if err != nil {
			return fmt.Errorf("building recipient: %w", err)
		}

		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening scenario file: %w", err)
		}
		defer in.Close()

		out, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()

		w, err := age.Encrypt(out, recipient)
		if err != nil {
			return fmt.Errorf("starting age encryption: %w", err)
		}
		if _, err := io.Copy(w, in); err != nil {
			return fmt.Errorf("encrypting: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("finalizing encryption: %w", err)
		}

		fmt.Printf("Wrote encrypted scenario to %s\n", args[1])
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <encrypted-file> <output-file>",
	Short: "Decrypt a passphrase-encrypted scenario file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase("Passphrase: ", false)
		if err != nil {
			return err
		}

		identity, err := age.NewScryptIdentity(passphrase)
		if err != nil {
			return fmt.Errorf("building identity: %w", err)
		}

		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening encrypted file: %w", err)
		}
		defer in.Close()

		r, err := age.Decrypt(in, identity)
		if err != nil {
			return fmt.Errorf("decrypting: %w", err)
		}

		out, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer out.Close()

		if _, err := io.Copy(out, r); err != nil {
			return fmt.Errorf("writing plaintext: %w", err)
		}

		fmt.Printf("Wrote decrypted scenario to %s\n", args[1])
		return nil
	},
}

// readPassphrase prompts on the controlling terminal without echoing
// input, optionally requiring confirmation to guard against a silent typo
// locking the household's own scenario file away.
func readPassphrase(prompt string, confirm bool) (string, error) {
	fmt.Print(prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	if confirm {
		fmt.Print("Confirm passphrase: ")
		again, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading passphrase confirmation: %w", err)
		}
		if string(again) != string(pass) {
			return "", fmt.Errorf("passphrases did not match")
		}
	}

	return string(pass), nil
}
