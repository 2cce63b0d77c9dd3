package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jrazmi/tasklists/infrastructure/datastores"
)

// Status writes the applied migrations of ds to w as a table.
func Status(ctx context.Context, ds *datastores.Datastore, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	applied, err := ds.Applied(ctx)
	if err != nil {
		return fmt.Errorf("read migration ledger: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tAPPLIED AT\tCHECKSUM")
	for _, m := range applied {
		fmt.Fprintf(tw, "%s\t%s\t%.12s\n", m.Version, m.AppliedAt, m.Checksum)
	}
	if len(applied) == 0 {
		fmt.Fprintln(tw, "(none)\t\t")
	}
	return tw.Flush()
}
