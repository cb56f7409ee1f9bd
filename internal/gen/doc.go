// Package gen produces typed adapters for mapper interfaces.
//
// ParseInterfaces reads the interface declarations of a Go source file with
// the tree-sitter Go grammar. Generate turns them into adapters that
// implement each interface by forwarding every method to quarry.Proxy.Invoke,
// plus a New<Name>Mapper constructor suitable for quarry.Mapper.
package gen
