package shell

// helpText is the command reference shown by `help`. Factor and index
// lists accept bracketed ([2,2,3]), comma (2,2,3), and space (2 2 3) forms.
const helpText = `## Membrane Shell Commands

| Command | Description |
|---------|-------------|
| create <factors> | Create a root membrane with the given prime-factor shape |
| create-child <id> <factors> | Create a membrane inside an existing one |
| destroy <id> | Destroy a membrane and its whole subtree |
| reshape <id> <factors> | Swap in a compatible shape (same factor product) |
| get <id> <indices> | Read one tensor element |
| set <id> <indices> <value> | Write one tensor element |
| fill <id> <value> | Set every element to one value |
| obj-add <id> <symbol> | Place a symbolic object in a membrane |
| obj-remove <id> <symbol> | Remove an object |
| obj-find <id> <symbol> | Check whether an object is present |
| obj-transfer <from> <to> <symbol> | Move an object between membranes |
| describe <id> | Show one membrane's shape, version, energy, and objects |
| tree [id] | Draw the containment tree (all roots, or one subtree) |
| list | Table of every live membrane |
| count | Live membrane count against the registry limit |
| limits | Show registry limits |
| factorize <n>... | Prime-factorize numbers into candidate shapes |
| query <pattern> | Query derived facts, e.g. membrane_ancestor(3, X) |
| facts | Dump every derived fact |
| help | Show this reference |
| quit | Leave the shell |

Examples:

` + "```" + `
create 2 2 3
create-child 1 [3,4]
set 1 [0,1] 2.5
fill 2 0.25
obj-add 1 ion
obj-transfer 1 2 ion
query membrane_ancestor(2, X)
` + "```"
