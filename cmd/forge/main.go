package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	forgebridge "github.com/Sopitive/forgebridge"
	"github.com/Sopitive/forgebridge/membridge"
	"github.com/Sopitive/forgebridge/registry"
	"github.com/Sopitive/forgebridge/stash"
	"github.com/Sopitive/forgebridge/transfer"
)

type config struct {
	Process string `env:"FORGE_PROCESS" envDefault:"MCC-Win64-Shipping.exe"`
	Stash   string `env:"FORGE_STASH" envDefault:"forge-stash.db"`
	DLL     string `env:"FORGE_DLL"`
	Verbose bool   `env:"FORGE_VERBOSE"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var (
		process     = flag.String("process", cfg.Process, "Target process image name")
		dllPath     = flag.String("dll", cfg.DLL, "Explicit path to the helper DLL")
		stashPath   = flag.String("stash", cfg.Stash, "Snapshot database path")
		typesFile   = flag.String("types", "", "JSON type extension file")
		doImport    = flag.Bool("import", false, "Read live objects from the target")
		limit       = flag.Int("limit", 0, "Scan only the first n slots (0 = whole array)")
		save        = flag.String("save", "", "Save imported records as a named snapshot")
		doExport    = flag.Bool("export", false, "Publish a snapshot into the target")
		from        = flag.String("from", "", "Snapshot name to export")
		doLabels    = flag.Bool("labels", false, "Refresh and print the target's label table")
		list        = flag.Bool("list", false, "List stored snapshots")
		diffPair    = flag.String("diff", "", "Diff two snapshots (FROM,TO)")
		yes         = flag.Bool("yes", false, "Skip the export confirmation prompt")
		verbose     = flag.Bool("v", cfg.Verbose, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			forgebridge.SetLogger(log)
			defer log.Sync()
		}
	}

	if !*doImport && !*doExport && !*doLabels && !*list && *diffPair == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: forge -import [-limit n] [-save name]")
		fmt.Fprintln(os.Stderr, "       forge -export -from <name> [-yes]")
		fmt.Fprintln(os.Stderr, "       forge -labels")
		fmt.Fprintln(os.Stderr, "       forge -list | -diff FROM,TO")
		fmt.Fprintln(os.Stderr, "       forge -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*process, *dllPath, *stashPath, *typesFile, *doImport, *limit, *save,
		*doExport, *from, *doLabels, *list, *diffPair, *yes, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(process, dllPath, stashPath, typesFile string, doImport bool, limit int, save string,
	doExport bool, from string, doLabels, list bool, diffPair string, yes, interactive bool) error {

	store, err := stash.Open(stashPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Offline operations need no live process.
	if list {
		return listSnapshots(store)
	}
	if diffPair != "" {
		return diffSnapshots(store, diffPair)
	}

	types := registry.Builtin()
	if typesFile != "" {
		types = types.Clone()
		n, err := types.LoadExtensionFile(typesFile)
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d extension types from %s\n", n, typesFile)
	}

	provider, err := membridge.New(dllPath)
	if err != nil {
		return err
	}
	bridge := transfer.New(provider, process, transfer.WithRegistry(types))

	if interactive {
		return runInteractive(bridge, store)
	}

	if doLabels {
		return printLabels(bridge)
	}
	if doImport {
		return importObjects(bridge, store, limit, save)
	}
	if doExport {
		return exportObjects(bridge, store, from, yes)
	}
	return nil
}

func printLabels(bridge *transfer.Bridge) error {
	entries, err := bridge.RefreshLabels()
	if err != nil {
		return err
	}
	fmt.Printf("Labels: %d\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  [%3d] %s\n", e.Index, e.Name)
	}
	return nil
}

func importObjects(bridge *transfer.Bridge, store *stash.Store, limit int, save string) error {
	slots, err := bridge.Import(limit)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d objects\n", len(slots))
	unresolved := 0
	for _, s := range slots {
		if s.Record.Unresolved {
			unresolved++
		}
	}
	if unresolved > 0 {
		fmt.Printf("  %d with unknown raw types (identity preserved verbatim)\n", unresolved)
	}

	recs := transfer.Records(slots)
	fmt.Print(stash.Listing(recs))

	if save != "" {
		if err := store.Save(save, recs); err != nil {
			return err
		}
		fmt.Printf("Saved snapshot %q (%d records)\n", save, len(recs))
	}
	return nil
}

func exportObjects(bridge *transfer.Bridge, store *stash.Store, from string, yes bool) error {
	if from == "" {
		return fmt.Errorf("-export requires -from <snapshot>")
	}
	recs, err := store.Load(from)
	if err != nil {
		return err
	}

	if !yes {
		fmt.Printf("Publish %d records from %q into the target? This overwrites every slot. [y/N] ", len(recs), from)
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		if ans := strings.ToLower(strings.TrimSpace(line)); ans != "y" && ans != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	res, err := bridge.Export(recs)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d records", res.Written)
	if res.Skipped > 0 {
		fmt.Printf(" (%d skipped, unknown types)", res.Skipped)
	}
	fmt.Println()
	return nil
}

func listSnapshots(store *stash.Store) error {
	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%-24s %4d records  %s\n", info.Name, info.Records, info.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func diffSnapshots(store *stash.Store, pair string) error {
	parts := strings.SplitN(pair, ",", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("-diff wants FROM,TO")
	}
	out, err := store.Diff(parts[0], parts[1])
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println("Snapshots are identical.")
		return nil
	}
	fmt.Print(out)
	return nil
}
