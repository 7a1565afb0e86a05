//go:build windows || odbc

package main

// Registers the "odbc" database/sql driver used by the secondary backend.
// Windows builds call odbc32.dll directly; other platforms need the odbc
// build tag, cgo and unixODBC.
import _ "github.com/alexbrainman/odbc"
