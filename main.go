package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/eval"
	"github.com/pipe01/trellis/internal/model"
	"github.com/pipe01/trellis/internal/parser/ast"
	"github.com/pipe01/trellis/internal/printer"
	"github.com/pipe01/trellis/internal/workspace"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	modelFile = kingpin.Flag("model", "YAML or JSON file with the data bindings are evaluated against").Short('m').ExistingFile()
	outline   = kingpin.Flag("outline", "Print an outline of each widget tree").Bool()
	resolve   = kingpin.Flag("resolve", "Print attributes with their values resolved against the model").Bool()
	indent    = kingpin.Flag("indent", "Indentation used by the outline").Default("\t").String()
	watch     = kingpin.Flag("watch", "Watch files for changes and check them again").Short('w').Bool()
	verbose   = kingpin.Flag("verbose", "Increase logging verbosity").Short('v').Counter()
	files     = kingpin.Arg("files", "List of files to check").Required().ExistingFiles()

	log = commonlog.GetLogger("trellis")

	printOpts printer.Options
)

func main() {
	kingpin.Parse()

	commonlog.Configure(*verbose, nil)

	printOpts = printer.Options{
		Indent: *indent,
	}

	if *modelFile != "" {
		m, err := loadModel(*modelFile)
		if err != nil {
			kingpin.Fatalf("failed to load model: %s", err)
		}

		if *resolve {
			printOpts.Model = m
			printOpts.OnError = func(n *ast.WidgetNode, attr *ast.Attribute, err error) {
				log.Warningf("%s: <%s %s>: %s", attr.Pos.Span(), n.Name, attr.Name, describe(err))
			}
		}
	} else if *resolve {
		kingpin.Fatalf("--resolve requires --model")
	}

	if *watch {
		err := watchFiles()
		if err != nil {
			kingpin.Fatalf("failed to watch files: %s", err)
		}
		return
	}

	wd, _ := os.Getwd()
	ws := workspace.New(wd)

	failed := false
	for _, fname := range *files {
		if !checkFile(ws, fname) {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func loadModel(path string) (eval.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	m, err := model.FromYAML(data)
	if err != nil {
		return nil, err
	}

	log.Infof("loaded model %q with %d fields", path, len(m.ListFields()))

	return m, nil
}

// checkFile loads fname, reports its diagnostics and prints its outline when
// asked to. It returns false if the file has any error.
func checkFile(ws *workspace.Workspace, fname string) bool {
	doc, err := ws.Load(fname)
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		return false
	}

	for _, d := range doc.Diagnostics {
		fmt.Fprintln(os.Stderr, d.Render())
	}

	log.Infof("checked %q: %d widgets, %d diagnostics", fname, countWidgets(doc), len(doc.Diagnostics))

	if *outline || *resolve {
		err = printer.Visit(os.Stdout, doc, printOpts)
		if err != nil {
			log.Errorf("failed to print outline of %q: %s", fname, err)
			return false
		}
	}

	return len(doc.Diagnostics) == 0
}

func describe(err error) string {
	var derr *diag.Error
	if errors.As(err, &derr) {
		return derr.Render()
	}
	return err.Error()
}

func countWidgets(doc *ast.Document) (n int) {
	ast.Walk(doc.Roots, func(*ast.WidgetNode, int) bool {
		n++
		return true
	})
	return
}

func watchFiles() error {
	watcher, err := NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, f := range *files {
		err = watcher.WatchFile(f)
		if err != nil {
			return fmt.Errorf("watch file %q: %w", f, err)
		}

		watcher.check(f)
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	log.Notice("watching files for changes...")

	<-ch
	return nil
}
