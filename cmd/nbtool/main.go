package main

import (
	"fmt"
	"os"

	"gopkg.in/alecthomas/kingpin.v2"

	nb "github.com/akeil/notebook"
)

const (
	checkmark = "\u2713"
	crossmark = "\u2717"
	ellipsis  = "\u2026"
)

func main() {
	app := kingpin.New("nbtool", "Notebook Tool")
	app.HelpFlag.Short('h')

	var (
		configFile = app.Flag("config", "Path to the config file").Short('c').Envar("NBTOOL_CONFIG").String()
		backend    = app.Flag("backend", "Storage backend, 'fs' or 'sqlite'").Short('b').Envar("NBTOOL_BACKEND").Enum("fs", "sqlite")
		path       = app.Flag("path", "Notebook directory or database file").Short('p').Envar("NBTOOL_PATH").String()
		logLevel   = app.Flag("loglevel", "Log level").Envar("NBTOOL_LOGLEVEL").String()
		listen     = app.Flag("listen", "Address for the notification server").Envar("NBTOOL_LISTEN").String()
	)

	app.Command("init", "Create a new notebook")

	ls := app.Command("ls", "List nodes").Default()
	var (
		format    = ls.Flag("format", "Output format, 'tree' or 'list'").Short('f').Default("tree").Enum("tree", "list")
		showTrash = ls.Flag("trash", "Include the trash").Short('t').Bool()
		match     = ls.Arg("match", "Path must match this glob pattern").String()
	)

	mkdir := app.Command("mkdir", "Create a folder")
	mkdirPath := mkdir.Arg("path", "Path of the new folder").Required().String()

	add := app.Command("add", "Add files as content nodes")
	var (
		addType  = add.Flag("type", "Content type, guessed from the extension if empty").String()
		addPaths = add.Arg("paths", "Source file(s) and destination").Required().Strings()
	)

	cat := app.Command("cat", "Print a payload")
	var (
		catPath    = cat.Arg("path", "Path of the content node").Required().String()
		catPayload = cat.Flag("payload", "Payload name, main payload if empty").String()
	)

	attach := app.Command("attach", "Attach files to a content node")
	var (
		attachPath  = attach.Arg("path", "Path of the content node").Required().String()
		attachFiles = attach.Arg("files", "Files to attach").Required().ExistingFiles()
		attachMain  = attach.Flag("main", "Make the (first) attached file the main payload").Bool()
	)

	mv := app.Command("mv", "Move or rename a node")
	var (
		mvSrc = mv.Arg("src", "Path of the node to move").Required().String()
		mvDst = mv.Arg("dst", "Destination folder or new path").Required().String()
	)

	rm := app.Command("rm", "Move nodes to the trash")
	var (
		rmPaths = rm.Arg("paths", "Paths of the nodes to remove").Required().Strings()
		rmForce = rm.Flag("force", "Delete instead of moving to the trash").Short('f').Bool()
	)

	trash := app.Command("trash", "List or empty the trash")
	trashEmpty := trash.Flag("empty", "Delete everything in the trash").Bool()

	app.Command("sync", "Reconcile the notebook with its storage")

	prefs := app.Command("prefs", "Show or change client preferences")
	var (
		prefsKey    = prefs.Arg("key", "Dotted key, e.g. 'editor.font'").String()
		prefsValue  = prefs.Arg("value", "New value").String()
		prefsDelete = prefs.Flag("delete", "Delete the key").Short('d').Bool()
	)

	export := app.Command("export", "Export nodes in PDF format")
	var (
		exportMatch = export.Arg("match", "Path must match this glob pattern").Required().String()
		outDir      = export.Flag("output", "Output directory").Short('o').Default(".").ExistingDir()
		pageSize    = export.Flag("page-size", "Page size").Default("A4").Enum("A4", "A5", "Letter", "Legal")
		gray        = export.Flag("gray", "Convert images to grayscale").Bool()
	)

	app.Command("watch", "Watch the storage and publish changes")

	listenCmd := app.Command("listen", "Print change notifications")
	listenURL := listenCmd.Arg("url", "Websocket URL, derived from the listen address if empty").String()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	s, err := loadSettings(*configFile)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	s = s.override(*backend, *path, *logLevel, *listen)
	nb.SetLogLevel(s.LogLevel)

	switch command {
	case "init":
		err = doInit(s)
	case "ls":
		err = doLs(s, *format, *match, *showTrash)
	case "mkdir":
		err = doMkdir(s, *mkdirPath)
	case "add":
		err = doAdd(s, *addPaths, *addType)
	case "cat":
		err = doCat(s, *catPath, *catPayload)
	case "attach":
		err = doAttach(s, *attachPath, *attachFiles, *attachMain)
	case "mv":
		err = doMv(s, *mvSrc, *mvDst)
	case "rm":
		err = doRm(s, *rmPaths, *rmForce)
	case "trash":
		err = doTrash(s, *trashEmpty)
	case "sync":
		err = doSync(s)
	case "prefs":
		err = doPrefs(s, *prefsKey, *prefsValue, *prefsDelete)
	case "export":
		err = doExport(s, *exportMatch, *outDir, *pageSize, *gray)
	case "watch":
		err = doWatch(s)
	case "listen":
		err = doListen(s, *listenURL)
	default:
		err = fmt.Errorf("unknown command: %q", command)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
