package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liquidityBook/internal/autofill"
	"liquidityBook/internal/model"
)

func runAutofill(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	amount, _ := flags.GetString("amount")
	strategyName, _ := flags.GetString("strategy")
	directionName, _ := flags.GetString("direction")

	strategy, err := model.ParseStrategy(strategyName)
	if err != nil {
		return err
	}
	direction, err := model.ParseDirection(directionName)
	if err != nil {
		return err
	}

	var (
		suggestion string
		ok         bool
	)
	if flags.Changed("price") {
		price, _ := flags.GetFloat64("price")
		suggestion, ok = autofill.CounterAmount(amount, price, strategy, direction)
	} else {
		eng, _, logger, err := openSession(cmd)
		if logger != nil {
			defer logger.Sync()
		}
		if err != nil {
			return err
		}
		suggestion, ok = eng.AutoFill(amount, strategy, direction)
	}

	// A blank line means there is nothing to suggest.
	if !ok {
		suggestion = ""
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), suggestion)
	return err
}
