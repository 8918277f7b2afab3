package cmd

import "github.com/fivedir/autogen/ui"

const helpText = `# autogen

Scans executables and DLLs for the API calls they import or export, records
them in an Access database and writes a C++ tracing source file.

## Usage

    autogen scan [qualifiers] file [file ...] [qualifiers]
    autogen scan @script

A qualifier starts with **/** or **-** followed directly by its name. Names are
case-insensitive and may be shortened to any unique prefix, so **/imp** means
**/IMPORTS**. Values follow **=** or **:**. A value containing spaces or
special characters goes in double quotes.

Text after **!** up to the end of the line is a comment. A script file holds
the same qualifiers and file names as a command line, spread over as many
lines as you like. Scripts cannot reference other scripts.

## Qualifiers

| Qualifier | Meaning |
|-----------|---------|
| /ALL | do not skip the C run-time library DLLs |
| /DATABASE=file | API database to use (default Win32API.accdb); a directory gets the default name |
| /EXCLUDE_DLLS=(file,...) | skip routines in these DLLs; no paths, wildcards * and ? allowed |
| /EXPORTS | process the routines each input file exports |
| /GENERATE, /NOGENERATE | write the tracing source file (default on) |
| /HELP, /? | show this text |
| /IMPORTS | process the routines each input file imports |
| /INCLUDE_DLLS=(file,...) | only process routines in these DLLs; no paths, wildcards allowed |
| /OUTPUT=file | tracing source file to write (default TraceAPI.cpp); a directory gets the default name |
| /RECURSE | also process every imported DLL and its dependencies |
| /VERBOSE | show progress while working |
| /WEBSCRAPE, /NOWEBSCRAPE | look up routines missing from the database online (default on) |

When a qualifier is repeated the last one wins. /INCLUDE_DLLS and
/EXCLUDE_DLLS cannot be used together, and at least one of /EXPORTS and
/IMPORTS is required.

## Examples

    autogen scan /IMPORTS /INCLUDE_DLLS=kernel32.dll taskmgr.exe
    autogen scan -EXPORTS -NOGENERATE "C:\Program Files\App\core.dll"
    autogen scan @nightly.txt
`

func showHelp() {
	out, err := ui.RenderMarkdown(helpText, ui.Width())
	if err != nil {
		ui.Printf("%s", helpText)
		return
	}
	ui.Printf("%s", out)
}
