package request

import (
	"fmt"
	"strings"
)

// Secondary backend column names. The driver reports them without the "$".
const (
	ColName           = "$Name"
	ColParent         = "$Parent"
	ColOpeningBalance = "$OpeningBalance"
	ColClosingBalance = "$ClosingBalance"
	ColAddress        = "$Address"
	ColGSTIN          = "$PartyGSTIN"
	ColPAN            = "$IncomeTaxNumber"
	ColEmail          = "$Email"
	ColPhone          = "$Phone"
	ColState          = "$LedStateName"
	ColPincode        = "$Pincode"
)

// LedgerColumns is the projection of LedgerSQL, in order.
var LedgerColumns = []string{
	ColName, ColParent, ColOpeningBalance, ColClosingBalance, ColAddress,
	ColGSTIN, ColPAN, ColEmail, ColPhone, ColState, ColPincode,
}

// LedgerSQL selects every ledger of the current company.
var LedgerSQL = "SELECT " + strings.Join(LedgerColumns, ", ") + " FROM Ledger"

// CompanySQL selects the names of all loaded companies.
const CompanySQL = "SELECT " + ColName + " FROM Company"

// ConnString builds the secondary backend connection string. The port is
// taken from the text after the last ':' of backendURL.
func ConnString(dsn, company, backendURL string) string {
	port := backendURL
	if i := strings.LastIndex(backendURL, ":"); i >= 0 {
		port = backendURL[i+1:]
	}
	port = strings.TrimRight(port, "/")
	return fmt.Sprintf("DSN=%s;Company=%s;Port=%s;", dsn, company, port)
}
