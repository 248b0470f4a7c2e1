// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/marquee/internal/store"
)

// GlobalFlagsValidator checks flag combinations no single flag validator can.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	// A memory store starts empty on every run.
	if c.Bool("offline") && strings.EqualFold(c.String("store"), store.KindMemory) {
		return errors.New("--offline with --store memory can never serve anything")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func StoreValidator(value any) error {
	if !slices.Contains(store.Kinds, strings.ToLower(value.(string))) {
		return fmt.Errorf("must be one of %v", store.Kinds)
	}
	return nil
}

func NonNegativeValidator(value any) error {
	if n, ok := value.(int); ok && n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
