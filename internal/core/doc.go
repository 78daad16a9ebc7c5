// Package core provides the table registry and snapshot service behind the
// drill-down frontends.
//
// This package contains all table hosting logic independent of any UI or
// transport layer. It is used by the web handlers and by the CLI.
//
// # Architecture
//
//   - Table Definitions: declared in a YAML or TOML file (see
//     [LoadDefinitions]) and held in a [Registry]. Each definition names a
//     record source, the identifier fields, paging defaults and a column tree.
//   - Service: loads a definition's records and builds one drill engine per
//     table. The result is a [Snapshot] with its own id.
//   - Errors: technical errors are mapped to coded user messages by [MapError].
//
// # Definitions File
//
//	tables:
//	  - key: org
//	    label: Organization
//	    group: People
//	    source: {kind: file, path: data/org.json}
//	    fields: {id: id, parent: parent, linker: name}
//	    page_size: 10
//	    columns:
//	      - {header: Name, field: name, sortable: true}
//	      - header: Role
//	        columns:
//	          - {header: Title, field: title}
//
// # Snapshots
//
// A snapshot is immutable. [Service.Reload] builds a fresh one and swaps it
// in only when the new collection is valid, so a bad edit to a source file
// never takes a working table offline. Navigation state is not stored here:
// hosts keep it (in the URL, in a terminal model) and hand it to the
// snapshot's engine.
package core
