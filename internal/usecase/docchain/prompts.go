package docchain

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
)

// Stage prompts are a drop-in configuration surface: an optional TOML profile
// overrides the builtin system prompts without touching the pipeline.

type promptProfile struct {
	ControlPlan  string `toml:"control_plan"`
	Instructions string `toml:"instructions"`
	Inspection   string `toml:"inspection"`
}

func builtinPrompts() promptProfile {
	return promptProfile{
		ControlPlan: "You are a quality engineer writing a control plan item. " +
			"Respond with a single JSON object containing the keys " +
			"control_method, sample_size, sample_frequency and reaction_plan. " +
			"Values are short shop-floor sentences.",
		Instructions: "You are a quality engineer writing a work instruction step. " +
			"Respond with a single JSON object containing the keys " +
			"action, key_point and estimated_seconds. The key_point must name " +
			"the control point, the check method and the abnormal action.",
		Inspection: "You are a quality engineer writing an inspection standard item. " +
			"Respond with a single JSON object containing the keys " +
			"inspection_method, sampling_plan, acceptance_criteria and ng_handling.",
	}
}

func loadPromptProfile(path string) (promptProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return promptProfile{}, errs.Wrap(err, "read prompt profile")
	}

	profile := builtinPrompts()
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return promptProfile{}, errs.Wrap(err, "parse prompt profile")
	}
	return profile, nil
}

// Required response keys per stage. Presence is the whole contract; values
// are not type-checked.
var (
	controlPlanKeys = []string{"control_method", "sample_size", "sample_frequency", "reaction_plan"}
	instructionKeys = []string{"action", "key_point"}
	inspectionKeys  = []string{"inspection_method", "sampling_plan", "acceptance_criteria", "ng_handling"}
)

func controlPlanUserPrompt(line quality.AnalysisLine, ch quality.Characteristic, controlType quality.ControlType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Control type: %s\n", controlType)
	fmt.Fprintf(&b, "Process step: %s\n", line.ProcessStep)
	fmt.Fprintf(&b, "Failure mode: %s\n", line.FailureMode)
	fmt.Fprintf(&b, "Cause: %s\n", line.Cause)
	fmt.Fprintf(&b, "Characteristic: %s (%s, %s)\n", ch.Name, ch.Kind, ch.Category)
	fmt.Fprintf(&b, "Specification: %s\n", ch.Specification)
	fmt.Fprintf(&b, "Measurement method: %s\n", ch.MeasurementMethod)
	fmt.Fprintf(&b, "Existing prevention control: %s\n", line.PreventionControl)
	fmt.Fprintf(&b, "Existing detection control: %s\n", line.DetectionControl)
	fmt.Fprintf(&b, "Recommended action: %s\n", line.RecommendedAction)
	return b.String()
}

func instructionUserPrompt(item quality.ControlPlanItem, line quality.AnalysisLine, ch quality.Characteristic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Process step: %s\n", line.ProcessStep)
	fmt.Fprintf(&b, "Control type: %s\n", item.ControlType)
	fmt.Fprintf(&b, "Control method: %s\n", item.ControlMethod)
	fmt.Fprintf(&b, "Reaction plan: %s\n", item.ReactionPlan)
	fmt.Fprintf(&b, "Characteristic: %s\n", ch.Name)
	fmt.Fprintf(&b, "Specification: %s\n", ch.Specification)
	fmt.Fprintf(&b, "Measurement method: %s\n", ch.MeasurementMethod)
	return b.String()
}

func inspectionUserPrompt(item quality.ControlPlanItem, ch quality.Characteristic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Control type: %s\n", item.ControlType)
	fmt.Fprintf(&b, "Control method: %s\n", item.ControlMethod)
	fmt.Fprintf(&b, "Sampling: %s\n", quality.SamplingPlanText(item.SampleSize, item.SampleFrequency))
	fmt.Fprintf(&b, "Characteristic: %s (%s)\n", ch.Name, ch.Category)
	fmt.Fprintf(&b, "Specification: %s\n", ch.Specification)
	if ch.LSL != nil {
		fmt.Fprintf(&b, "LSL: %v %s\n", *ch.LSL, ch.Unit)
	}
	if ch.USL != nil {
		fmt.Fprintf(&b, "USL: %v %s\n", *ch.USL, ch.Unit)
	}
	fmt.Fprintf(&b, "Measurement method: %s\n", ch.MeasurementMethod)
	return b.String()
}
