package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"giftledger/internal/core"
	"giftledger/internal/report"
)

// draftFlags binds the mutable entry fields to a flag set.
type draftFlags struct {
	date, eventType, txType, name, relation, amount, contact, memo *string
}

func bindDraft(fs *flag.FlagSet) draftFlags {
	return draftFlags{
		date:      fs.String("date", "", "event date (yyyy-MM-dd)"),
		eventType: fs.String("event", "", "event type"),
		txType:    fs.String("type", "", "RECEIVED or SENT (default RECEIVED)"),
		name:      fs.String("name", "", "counterparty name"),
		relation:  fs.String("relation", "", "relation"),
		amount:    fs.String("amount", "", "amount in won"),
		contact:   fs.String("contact", "", "contact (010-1234-5678)"),
		memo:      fs.String("memo", "", "memo"),
	}
}

func (f draftFlags) draft() (core.Draft, error) {
	d := core.Draft{
		EventType:        *f.eventType,
		CounterpartyName: *f.name,
		Relation:         *f.relation,
		Contact:          *f.contact,
		Memo:             *f.memo,
	}
	if strings.TrimSpace(*f.date) != "" {
		date, err := core.ParseDate(*f.date)
		if err != nil {
			return core.Draft{}, &core.ValidationError{Field: "eventDate", Message: "올바른 날짜 형식이 아닙니다 (yyyy-MM-dd)"}
		}
		d.EventDate = date
	}
	if strings.TrimSpace(*f.txType) != "" {
		t, err := core.ParseTransactionType(*f.txType)
		if err != nil {
			return core.Draft{}, err
		}
		d.TransactionType = t
	}
	amount, err := core.ParseAmountText(*f.amount)
	if err != nil {
		return core.Draft{}, err
	}
	d.Amount = amount
	return d, nil
}

func (a *app) runEntry(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("entry: missing subcommand")
	}
	sub, rest := args[0], args[1:]
	fs := newFlagSet("entry " + sub)
	owner := fs.Int64("owner", 0, "owner id")
	asJSON := fs.Bool("json", false, "print JSON")

	switch sub {
	case "add":
		df := bindDraft(fs)
		if err := a.entryFlags(fs, rest, owner); err != nil {
			return err
		}
		d, err := df.draft()
		if err != nil {
			return err
		}
		e, err := a.entries.Create(ctx, *owner, d)
		if err != nil {
			return err
		}
		return a.printEntry(e, *asJSON)

	case "get":
		id := fs.String("id", "", "entry id")
		if err := a.entryFlags(fs, rest, owner); err != nil {
			return err
		}
		entryID, err := parseID("entry get", *id)
		if err != nil {
			return err
		}
		e, err := a.entries.Get(ctx, *owner, entryID)
		if err != nil {
			return err
		}
		return a.printEntry(e, *asJSON)

	case "update":
		id := fs.String("id", "", "entry id")
		df := bindDraft(fs)
		if err := a.entryFlags(fs, rest, owner); err != nil {
			return err
		}
		entryID, err := parseID("entry update", *id)
		if err != nil {
			return err
		}
		d, err := df.draft()
		if err != nil {
			return err
		}
		e, err := a.entries.Update(ctx, *owner, entryID, d)
		if err != nil {
			return err
		}
		return a.printEntry(e, *asJSON)

	case "delete":
		id := fs.String("id", "", "entry id")
		if err := a.entryFlags(fs, rest, owner); err != nil {
			return err
		}
		entryID, err := parseID("entry delete", *id)
		if err != nil {
			return err
		}
		if err := a.entries.Delete(ctx, *owner, entryID); err != nil {
			return err
		}
		_, err = fmt.Fprintf(a.out, "entry %d deleted\n", entryID)
		return err

	case "list":
		page := fs.Int("page", 0, "0-based page number")
		size := fs.Int("size", core.DefaultPageSize, "page size (1-100)")
		search := fs.String("search", "", "counterparty name contains")
		txType := fs.String("type", "", "RECEIVED or SENT")
		if err := a.entryFlags(fs, rest, owner); err != nil {
			return err
		}
		p, err := a.entries.List(ctx, *owner, core.ListQuery{
			Page:   *page,
			Size:   *size,
			Search: *search,
			Type:   core.TransactionType(*txType),
		})
		if err != nil {
			return err
		}
		if *asJSON {
			return report.JSON(a.out, p)
		}
		return report.Page(a.out, p)

	default:
		return usageError("entry: unknown subcommand %q", sub)
	}
}

// entryFlags parses the flag set and checks the owner flag after parsing.
func (a *app) entryFlags(fs *flag.FlagSet, args []string, owner *int64) error {
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	return requireOwnerFlag(fs.Name(), *owner)
}

func (a *app) printEntry(e core.Entry, asJSON bool) error {
	if asJSON {
		return report.JSON(a.out, e)
	}
	return report.Entry(a.out, e)
}
