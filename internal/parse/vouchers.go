package parse

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyx-dev/tallyx/internal/model"
)

// VoucherFilter narrows a parsed voucher collection.
type VoucherFilter struct {
	Type           string // case-insensitive; empty keeps all types
	Limit          int    // <= 0 keeps all
	IncludeEntries bool
}

// node is a generic element tree that keeps child order.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Vouchers parses the voucher collection export. Vouchers without a number
// are skipped; the filter is applied after the whole response is parsed.
func Vouchers(raw, company string, f VoucherFilter) ([]model.Voucher, error) {
	all, err := withRepair(raw, func(doc string) ([]model.Voucher, error) {
		return decodeVouchers(doc, company)
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Voucher, 0, len(all))
	for _, v := range all {
		if f.Type != "" && !v.Type.Matches(f.Type) {
			continue
		}
		if !f.IncludeEntries {
			v.Entries = nil
		}
		out = append(out, v)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func decodeVouchers(doc, company string) ([]model.Voucher, error) {
	dec := newDecoder(doc)
	var (
		out  []model.Voucher
		root bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		root = true
		if se.Name.Local != "VOUCHER" {
			continue
		}
		var n node
		if err := dec.DecodeElement(&n, &se); err != nil {
			return nil, err
		}
		v := voucherFromNode(n, company)
		if v.Number == "" {
			continue
		}
		out = append(out, v)
	}
	if !root {
		return nil, errors.New("no root element")
	}
	return out, nil
}

func voucherFromNode(n node, company string) model.Voucher {
	v := model.Voucher{
		Company: company,
		Type:    model.NormalizeVoucherType(n.attr("VCHTYPE")),
		Amount:  decimal.Zero,
	}
	var partyLedger, partyName string
	for _, c := range n.Nodes {
		val := strings.TrimSpace(c.Text)
		switch c.XMLName.Local {
		case "VOUCHERNUMBER":
			v.Number = val
		case "DATE":
			v.Date = Date(val)
		case "PARTYLEDGERNAME":
			if val != "" {
				partyLedger = val
			}
		case "PARTYNAME":
			if val != "" {
				partyName = val
			}
		case "NARRATION":
			v.Narration = val
		case "VOUCHERTYPENAME":
			v.Type = model.NormalizeVoucherType(val)
		case "ALLLEDGERENTRIES.LIST":
			if e, ok := entryFromNode(c); ok {
				v.Entries = append(v.Entries, e)
			}
		}
	}
	v.PartyName = partyLedger
	if v.PartyName == "" {
		v.PartyName = partyName
	}
	v.Complete()
	return v
}

func entryFromNode(n node) (model.LedgerEntry, bool) {
	e := model.LedgerEntry{Amount: decimal.Zero, Side: model.Credit}
	seen := false
	for _, c := range n.Nodes {
		val := strings.TrimSpace(c.Text)
		switch c.XMLName.Local {
		case "LEDGERNAME":
			e.LedgerName = val
			seen = true
		case "AMOUNT":
			e.Amount, e.Side = VoucherEntryAmount(val)
			seen = true
		case "ISDEEMEDPOSITIVE":
			lower := strings.ToLower(val)
			e.IsDeemedPositive = lower == "yes" || lower == "true"
			seen = true
		}
	}
	return e, seen
}
