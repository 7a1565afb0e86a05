// Package request builds the XML envelopes sent to the primary backend and
// the SQL statements sent to the secondary backend.
//
// Company names and dates are interpolated verbatim. Callers that accept
// these values from untrusted sources must sanitize them first.
package request

import (
	"fmt"
	"strings"
)

// Field is one projected column of a TDL report: the backend emits it as an
// element named strings.ToUpper(Name) holding the value of Expr.
type Field struct {
	Name string
	Expr string
}

// Tag returns the element name the backend uses for f in responses.
func (f Field) Tag() string {
	return strings.ToUpper(f.Name)
}

// Report describes a flat TDL report: one line per object of CollectionType.
type Report struct {
	ID             string
	Prefix         string
	CollectionType string
	Fields         []Field
}

// Build renders the export envelope for company. An empty company omits
// SVCURRENTCOMPANY, which is what the company list needs.
func (r Report) Build(company string) string {
	form := r.Prefix + "Form"
	part := r.Prefix + "Part"
	line := r.Prefix + "Line"
	coll := r.Prefix + "Collection"

	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}

	var b strings.Builder
	writeHeader(&b, "Data", r.ID)
	b.WriteString("<BODY><DESC>\n")
	writeStaticVariables(&b, company)
	b.WriteString("<TDL><TDLMESSAGE>\n")
	fmt.Fprintf(&b, "<REPORT NAME=%q><FORMS>%s</FORMS></REPORT>\n", r.ID, form)
	fmt.Fprintf(&b, "<FORM NAME=%q><PARTS>%s</PARTS></FORM>\n", form, part)
	fmt.Fprintf(&b, "<PART NAME=%q><LINES>%s</LINES><REPEAT>%s : %s</REPEAT><SCROLLED>Vertical</SCROLLED></PART>\n", part, line, line, coll)
	fmt.Fprintf(&b, "<LINE NAME=%q><FIELDS>%s</FIELDS></LINE>\n", line, strings.Join(names, ", "))
	for _, f := range r.Fields {
		fmt.Fprintf(&b, "<FIELD NAME=%q><SET>%s</SET></FIELD>\n", f.Name, f.Expr)
	}
	fmt.Fprintf(&b, "<COLLECTION NAME=%q><TYPE>%s</TYPE></COLLECTION>\n", coll, r.CollectionType)
	b.WriteString("</TDLMESSAGE></TDL>\n</DESC></BODY>\n</ENVELOPE>")
	return b.String()
}

func writeHeader(b *strings.Builder, typ, id string) {
	b.WriteString("<ENVELOPE>\n")
	fmt.Fprintf(b, "<HEADER><VERSION>1</VERSION><TALLYREQUEST>Export</TALLYREQUEST><TYPE>%s</TYPE><ID>%s</ID></HEADER>\n", typ, id)
}

func writeStaticVariables(b *strings.Builder, company string, extra ...string) {
	b.WriteString("<STATICVARIABLES>\n<SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>\n")
	if company != "" {
		fmt.Fprintf(b, "<SVCURRENTCOMPANY>%s</SVCURRENTCOMPANY>\n", company)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		fmt.Fprintf(b, "<%s>%s</%s>\n", extra[i], extra[i+1], extra[i])
	}
	b.WriteString("</STATICVARIABLES>\n")
}

// Ledger report fields.
var (
	FldName           = Field{"FldName", "$Name"}
	FldParent         = Field{"FldParent", "$Parent"}
	FldOpeningBalance = Field{"FldOpeningBalance", "$OpeningBalance"}
	FldClosingBalance = Field{"FldClosingBalance", "$ClosingBalance"}
	FldAddress        = Field{"FldAddress", "$Address"}
	FldGSTIN          = Field{"FldGSTIN", "$PartyGSTIN"}
	FldPAN            = Field{"FldPAN", "$IncomeTaxNumber"}
	FldEmail          = Field{"FldEmail", "$Email"}
	FldPhone          = Field{"FldPhone", "$Phone"}
	FldState          = Field{"FldState", "$LedStateName"}
	FldPincode        = Field{"FldPincode", "$Pincode"}
	FldCreditPeriod   = Field{"FldCreditPeriod", "$CreditPeriod"}
)

// Group report fields.
var (
	FldGrpName    = Field{"FldGrpName", "$Name"}
	FldGrpParent  = Field{"FldGrpParent", "$Parent"}
	FldGrpPrimary = Field{"FldGrpPrimary", "$IsPrimary"}
)

// Cost centre report fields.
var (
	FldCCName   = Field{"FldCCName", "$Name"}
	FldCCParent = Field{"FldCCParent", "$Parent"}
)

// Company report fields.
var (
	FldCompanyName  = Field{"FldCompanyName", "$Name"}
	FldCmpName      = Field{"FldCmpName", "$Name"}
	FldCmpAddr      = Field{"FldCmpAddr", "$Address"}
	FldCmpState     = Field{"FldCmpState", "$State"}
	FldCmpPin       = Field{"FldCmpPin", "$Pincode"}
	FldCmpPhone     = Field{"FldCmpPhone", "$PhoneNumber"}
	FldCmpEmail     = Field{"FldCmpEmail", "$Email"}
	FldCmpGSTIN     = Field{"FldCmpGSTIN", "$GSTIN"}
	FldCmpPAN       = Field{"FldCmpPAN", "$IncomeTaxNumber"}
	FldCmpBooksFrom = Field{"FldCmpBooksFrom", "$BooksFrom"}
)

var (
	ledgerReport = Report{
		ID:             "LedgerTable",
		Prefix:         "Ledger",
		CollectionType: "Ledger",
		Fields: []Field{
			FldName, FldParent, FldOpeningBalance, FldClosingBalance, FldAddress, FldGSTIN,
			FldPAN, FldEmail, FldPhone, FldState, FldPincode, FldCreditPeriod,
		},
	}
	groupReport = Report{
		ID:             "GroupReport",
		Prefix:         "Group",
		CollectionType: "Group",
		Fields:         []Field{FldGrpName, FldGrpParent, FldGrpPrimary},
	}
	costCentreReport = Report{
		ID:             "CostCentreReport",
		Prefix:         "CC",
		CollectionType: "Cost Centre",
		Fields:         []Field{FldCCName, FldCCParent},
	}
	companyListReport = Report{
		ID:             "List of Companies",
		Prefix:         "Company",
		CollectionType: "Company",
		Fields:         []Field{FldCompanyName},
	}
	companyInfoReport = Report{
		ID:             "CompanyInfoReport",
		Prefix:         "Cmp",
		CollectionType: "Company",
		Fields: []Field{
			FldCmpName, FldCmpAddr, FldCmpState, FldCmpPin, FldCmpPhone,
			FldCmpEmail, FldCmpGSTIN, FldCmpPAN, FldCmpBooksFrom,
		},
	}
)

// Ledgers requests every ledger master of company.
func Ledgers(company string) string { return ledgerReport.Build(company) }

// Groups requests every group master of company.
func Groups(company string) string { return groupReport.Build(company) }

// CostCentres requests every cost centre of company.
func CostCentres(company string) string { return costCentreReport.Build(company) }

// CompanyList requests the names of all companies loaded in the backend.
func CompanyList() string { return companyListReport.Build("") }

// CompanyInfo requests the master record of company.
func CompanyInfo(company string) string { return companyInfoReport.Build(company) }

// VoucherMethods are the native voucher fields requested from the backend.
// Keep the list explicit: "*" makes the backend emit invalid character references.
var VoucherMethods = []string{"VoucherNumber", "VoucherTypeName", "Date", "Amount", "PartyLedgerName", "Narration"}

// Vouchers requests the voucher collection of company between from and to
// (YYYYMMDD, inclusive) with all ledger entries.
func Vouchers(company, from, to string) string {
	var b strings.Builder
	writeHeader(&b, "Collection", "VchCollection")
	b.WriteString("<BODY><DESC>\n")
	writeStaticVariables(&b, company, "SVFROMDATE", from, "SVTODATE", to)
	b.WriteString("<TDL><TDLMESSAGE>\n")
	b.WriteString("<COLLECTION NAME=\"VchCollection\"><TYPE>Voucher</TYPE>\n")
	fmt.Fprintf(&b, "<NATIVEMETHOD>%s</NATIVEMETHOD>\n", strings.Join(VoucherMethods, ", "))
	b.WriteString("<NATIVEMETHOD>AllLedgerEntries</NATIVEMETHOD>\n")
	b.WriteString("</COLLECTION>\n</TDLMESSAGE></TDL>\n</DESC></BODY>\n</ENVELOPE>")
	return b.String()
}
