// Package core exposes the packguard scanning engine to external programs
// without reaching into internal packages. The surface is intentionally
// small: build an Options, call Scan, consume the Result.
package core
