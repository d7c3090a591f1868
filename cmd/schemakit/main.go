// Package main is the entry point for schemakit.
//
//	@title			schemakit
//	@version		1.0
//	@description	Read-only introspection of a merged schema document.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@BasePath		/
package main

func main() {
	Execute()
}
