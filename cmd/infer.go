package cmd

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clinicsim/clinicsim/sim/fuzzy"
)

var (
	inferResolution  string
	inferOutputScale int
	inferNoRescale   bool
)

// inferCmd scores one questionnaire given as key=value arguments.
var inferCmd = &cobra.Command{
	Use:   "infer key=value...",
	Short: "Score one satisfaction questionnaire",
	Long: `Score one satisfaction questionnaire with the fuzzy engine.

Keys may be canonical names (communication), short aliases (ci) or display
labels ("Communication and Information"). Values on 0-1 are rescaled to 0-10
unless --no-unit-rescale is given. patient_id=N tags the result.`,
	Example: `  clinicsim infer ci=8 ra=7 sc=9 po=0.9 cb=3`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := parsePayload(args)
		if err != nil {
			return err
		}
		engine, err := fuzzy.NewEngine(fuzzy.Options{
			Resolution:         fuzzy.Resolution(inferResolution),
			OutputScale:        inferOutputScale,
			DisableUnitRescale: inferNoRescale,
		})
		if err != nil {
			return err
		}
		rec, err := engine.Evaluate(payload)
		if err != nil {
			return err
		}
		logrus.Debugf("payload %v -> vector %v", payload, payload.Vector(!inferNoRescale))
		if rec.PatientID != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "patient %d: %.4f / %d\n", *rec.PatientID, rec.Score, rec.Scale)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f / %d\n", rec.Score, rec.Scale)
		}
		return nil
	},
}

// parsePayload turns key=value arguments into a payload. Values stay strings;
// the engine parses and drops the non-numeric ones.
func parsePayload(args []string) (fuzzy.Payload, error) {
	payload := make(fuzzy.Payload, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", arg)
		}
		if _, known := fuzzy.Lookup(key); !known && key != fuzzy.PatientIDKey {
			logrus.Warnf("ignoring unknown criterion %q", key)
		}
		payload[key] = strings.TrimSpace(value)
	}
	return payload, nil
}

func init() {
	inferCmd.Flags().StringVar(&inferResolution, "resolution", "base", "Fuzzy universe resolution (base, fine)")
	inferCmd.Flags().IntVar(&inferOutputScale, "output-scale", 10, "Output scale (1 or 10)")
	inferCmd.Flags().BoolVar(&inferNoRescale, "no-unit-rescale", false, "Read 0-1 values literally instead of rescaling to 0-10")
}
