package workflows

import (
	kerrors "github.com/lazywarden/lazywarden/internal/errors"
)

// Stage identifies a step of the recovery pipeline.
type Stage int

const (
	StageResolvePaths Stage = iota
	StageCheckOuterZip
	StageExtractOuterZip
	StageCheckJSON
	StageDecryptJSON
	StageCheckAttachmentsZip
	StageExtractAttachmentsZip
	StageReported
)

var stageNames = [...]string{
	StageResolvePaths:          "ResolvePaths",
	StageCheckOuterZip:         "CheckOuterZip",
	StageExtractOuterZip:       "ExtractOuterZip",
	StageCheckJSON:             "CheckJSON",
	StageDecryptJSON:           "DecryptJSON",
	StageCheckAttachmentsZip:   "CheckAttachmentsZip",
	StageExtractAttachmentsZip: "ExtractAttachmentsZip",
	StageReported:              "Reported",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Unknown"
	}
	return stageNames[s]
}

// Outcome tells the sequencer what to do after a stage.
type Outcome int

const (
	// Continue moves on to the next stage.
	Continue Outcome = iota
	// Skip jumps to the stage's skip target.
	Skip
	// Abort ends the run with the stage error.
	Abort
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	default:
		return "unknown"
	}
}

// StageResult is the explicit outcome of one stage.
type StageResult struct {
	Stage   Stage
	Outcome Outcome
	Path    string
	Err     error

	// Files lists the files written by extraction and decryption stages.
	Files []string
}

// skipTargets maps a stage to where the run resumes when that stage is
// skipped. A missing outer archive ends the run; a missing JSON blob only
// skips decryption, since the attachments archive is independent of it.
var skipTargets = map[Stage]Stage{
	StageCheckOuterZip:         StageReported,
	StageExtractOuterZip:       StageReported,
	StageCheckJSON:             StageCheckAttachmentsZip,
	StageDecryptJSON:           StageCheckAttachmentsZip,
	StageCheckAttachmentsZip:   StageReported,
	StageExtractAttachmentsZip: StageReported,
}

// Classify maps a stage error onto an outcome. Missing inputs are skipped,
// everything else aborts the run.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Continue
	case kerrors.IsSkippable(err):
		return Skip
	default:
		return Abort
	}
}

// next returns the stage that follows s given outcome o.
func next(s Stage, o Outcome) Stage {
	if o == Skip {
		if target, ok := skipTargets[s]; ok {
			return target
		}
	}
	return s + 1
}
