package experiment

import "github.com/justin-oleary/simwatch/pkg/artifact"

// Evidence is what the filesystem says about one experiment. A nil Log means
// the run log does not exist; nil Stats means there is no stats file.
type Evidence struct {
	Log   *artifact.RunLog
	Stats artifact.Values
}

// Classify maps evidence to a status and, for failures, the captured error
// message. Precedence:
//
//  1. no log                    → Pending
//  2. log is terminal-complete  → Completed
//  3. log has panic/fatal line  → Failed
//  4. log has content           → Running
//  5. log is empty              → Pending
//
// A stats file with a parseable simTicks overrides all of the above with
// Completed. The stats file is written once at the end of a run, so it is
// authoritative even when the log markers have not been flushed yet.
func Classify(ev Evidence) (Status, string) {
	if _, ok := ev.Stats.Int(artifact.SimTicks); ok {
		return Completed, ""
	}

	switch {
	case ev.Log == nil:
		return Pending, ""
	case ev.Log.Terminal:
		return Completed, ""
	case ev.Log.Failed:
		return Failed, ev.Log.Error
	case ev.Log.NonEmpty:
		return Running, ""
	default:
		return Pending, ""
	}
}
