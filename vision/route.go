package vision

import (
	"fmt"
	"strings"

	"github.com/laptopkerja/contentgen/types"
)

// Mode is the vision routing decision.
type Mode string

const (
	ModeOff          Mode = "off"
	ModeTextFallback Mode = "text_fallback"
	ModeMultimodal   Mode = "multimodal"
)

// Options tunes Route.
type Options struct {
	// AllowTextFallback downgrades images sent to a provider without a
	// vision adapter instead of rejecting the request.
	AllowTextFallback bool
	// InputModalities are forwarded to IsVisionCapableModel when known.
	InputModalities []string
	// AdapterVision is the registered adapter's SupportsVision flag. When
	// set it decides provider support in place of the static table.
	AdapterVision *bool
}

// Decision is the outcome of Route.
type Decision struct {
	Mode     Mode     `json:"mode"`
	Warnings []string `json:"warnings,omitempty"`
}

// Route decides how image references reach the backend. model must already
// be resolved to the provider default when the caller gave none.
func Route(provider, model string, refs []types.ImageReference, opts Options) (Decision, error) {
	if len(refs) == 0 {
		return Decision{Mode: ModeOff}, nil
	}

	name := strings.TrimSpace(provider)
	if name == "" {
		return Decision{
			Mode:     ModeTextFallback,
			Warnings: []string{"no provider selected; image references are described in text only"},
		}, nil
	}

	supported := IsVisionProviderImplemented(name)
	if opts.AdapterVision != nil {
		supported = *opts.AdapterVision
	}
	if !supported {
		if opts.AllowTextFallback {
			return Decision{
				Mode: ModeTextFallback,
				Warnings: []string{fmt.Sprintf(
					"provider %q has no vision adapter; image references are described in text only", name)},
			}, nil
		}
		return Decision{}, types.NewValidationError("provider",
			fmt.Sprintf("provider %q does not support image references", name)).
			WithSource(name, model, types.StageValidate)
	}

	if !IsVisionCapableModel(ModelRef{Provider: name, Model: model, InputModalities: opts.InputModalities}) {
		return Decision{}, types.NewValidationError("model",
			fmt.Sprintf("model %q of provider %q does not accept image input", model, name)).
			WithSource(name, model, types.StageValidate)
	}

	return Decision{Mode: ModeMultimodal}, nil
}
