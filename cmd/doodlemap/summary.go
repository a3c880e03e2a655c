// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bureau-foundation/doodlemap/lib/frd"
	"github.com/bureau-foundation/doodlemap/lib/reconcile"
)

// writeSummary prints one row per sender in list order with the
// friend it maps to, or "-" when unmapped.
func writeSummary(w io.Writer, roster frd.Roster, senders []reconcile.Sender, mapping *reconcile.Mapping) error {
	if len(senders) == 0 {
		_, err := fmt.Fprintln(w, "No letters from other senders.")
		return err
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "SENDER\tLETTERS\tMAPPED TO")
	for _, sender := range senders {
		contact := "-"
		if id, ok := mapping.Get(sender.PrincipalID); ok {
			contact = contactLabel(roster, id)
		}
		fmt.Fprintf(writer, "%s\t%d\t%s\n", senderLabel(sender), sender.Letters, contact)
	}
	fmt.Fprintf(writer, "\n%d of %d senders mapped\n", mapping.Len(), len(senders))
	return writer.Flush()
}

func senderLabel(sender reconcile.Sender) string {
	if name := sender.Name(); name != "" {
		return fmt.Sprintf("%s (#%d)", name, sender.PrincipalID)
	}
	return fmt.Sprintf("#%d", sender.PrincipalID)
}

func contactLabel(roster frd.Roster, id frd.PrincipalID) string {
	entry, ok := roster.Lookup(id)
	switch {
	case !ok:
		return fmt.Sprintf("#%d", id)
	case entry.Local:
		return fmt.Sprintf("%s (#%d, you)", entry.Name(), id)
	default:
		return fmt.Sprintf("%s (#%d)", entry.Name(), id)
	}
}
