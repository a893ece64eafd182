// Command gymctl is the operator console for the AMRAP gym Record Store.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	goversion "github.com/caarlos0/go-version"

	"github.com/patel-jhanvi/amrap-gym/internal/store"
	"github.com/patel-jhanvi/amrap-gym/internal/viewmodel"
)

// Set through -ldflags at release time.
var (
	version   = "0.1.0"
	commit    = ""
	treeState = ""
	date      = ""
	builtBy   = ""
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func buildVersion(version, commit, date, builtBy, treeState string) goversion.Info {
	return goversion.GetVersionInfo(
		goversion.WithAppDetails("gymctl", "Operator console for the AMRAP gym record store", ""),
		func(i *goversion.Info) {
			if commit != "" {
				i.GitCommit = commit
			}
			if version != "" {
				i.GitVersion = version
			}
			if treeState != "" {
				i.GitTreeState = treeState
			}
			if date != "" {
				i.BuildDate = date
			}
			if builtBy != "" {
				i.BuiltBy = builtBy
			}
		},
	)
}

// printError writes err for an operator. A lost membership gets its own
// wording since the user now belongs to neither gym.
func printError(w io.Writer, err error) {
	var lost *viewmodel.LostMembershipError
	if errors.As(err, &lost) {
		fmt.Fprintf(w, "MEMBERSHIP LOST: user %s was removed from gym %s but could not be added to gym %s.\n",
			lost.UserID, lost.FromGymID, lost.ToGymID)
		fmt.Fprintf(w, "The user is now in neither gym. Cause: %v\n", lost.Err)
		fmt.Fprintf(w, "Re-add them with: gymctl memberships add %s <gym>\n", lost.UserID)
		return
	}
	switch {
	case errors.Is(err, store.ErrTransport):
		fmt.Fprintf(w, "error: record store unavailable: %v\n", err)
	case errors.Is(err, store.ErrUnauthorized):
		fmt.Fprintf(w, "error: %v (run gymctl login and set GYMCTL_TOKEN)\n", err)
	default:
		fmt.Fprintf(w, "error: %v\n", err)
	}
}
