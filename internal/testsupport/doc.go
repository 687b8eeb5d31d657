// Package testsupport holds helpers shared by package tests: temp-dir
// backed configs, stub binaries on PATH, and small ALTO and PDF fixtures.
package testsupport
