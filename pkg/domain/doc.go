/*
Package domain contains the question tree model and the value types shared by the
qtree engine, its ports and its adapters.

It is kept pure and free of I/O, following the same hexagonal split as the rest
of the module: collaborators that talk to users, remote procedures or the file
system are declared in package ports and implemented in pkg/adapters.

# Key Entities

  - QTreeNode: a node in the question tree. It owns its children and carries an
    optional activation Condition.
  - Question: one of the prompting variants (select, text, number, file) or a
    silent FuncQuestion that computes a derived value.
  - Group: a non-prompting node whose children share one activation condition.
  - Option / OptionItem: the selectable items of a select question, either
    static or produced by a remote Func.
  - Validation: the closed set of validation shapes (Any, Number, String,
    StringArray, File, RemoteFunc, LocalFunc).
  - Answers / Result: the flat answer set produced by one traversal.
*/
package domain
