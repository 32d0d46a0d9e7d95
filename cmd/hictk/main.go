package main

import "os"

var handler = multi{
	"dump":               HandlerFunc(runDump),
	"balance":            HandlerFunc(runBalance),
	"zoomify":            HandlerFunc(runZoomify),
	"convert":            HandlerFunc(runConvert),
	"load":               HandlerFunc(runLoad),
	"merge":              HandlerFunc(runMerge),
	"fix-mcool":          HandlerFunc(runFixMcool),
	"rename-chromosomes": HandlerFunc(runRenameChromosomes),
	"validate":           HandlerFunc(runValidate),
	"metadata":           HandlerFunc(runMetadata),
}

func main() {
	os.Exit(handler.RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
