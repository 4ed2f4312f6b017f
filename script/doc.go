// Package script loads SQL script files from local paths, file:// and
// http(s):// URLs, and s3:// object keys, and expands shell-style glob
// patterns into script lists.
package script
