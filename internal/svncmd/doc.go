// Package svncmd coordinates Subversion client invocations through execshell.
//
// Client exposes typed checkout, update, export, and list operations over the
// svn binary and resolves "latest child" locations from listing output for
// tag-style workflows.
package svncmd
