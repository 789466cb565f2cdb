//go:build stratumdebug

package assert

const enabled = true
