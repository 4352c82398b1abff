/*
Package ports defines the driven ports (interfaces) for the qtree engine.

These interfaces decouple the traversal from the concrete prompting surface,
the remote procedure transport and the file system, so the same tree can be
answered in a terminal, over JSON lines, or through an MCP client.

# Key Interfaces

  - Asker: obtains one raw answer for a question (terminal, JSON, survey).
  - RemoteCaller: invokes namespace.method for dynamic options, defaults,
    remote validations and func questions.
  - FileSystem: answers existence checks for file validations.
  - LocalValidators / SelectionHandlers: named capabilities registered by the host.
  - TreeLoader: returns raw tree definitions (memory, file, Loam).
  - Locker: guards against two traversals running the same task at once.
*/
package ports
