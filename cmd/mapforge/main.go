// Command mapforge converts a game-server data root into the node-tree
// binary item database and world map consumed by an independent map
// editor.
//
// Usage:
//
//	mapforge [OPTIONS] <game-data-root> <output-name>
//
// Examples:
//
//	mapforge ./server-data world
//	mapforge --config forge.yaml ./server-data world
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"

	"github.com/kelindar/mapforge"
	"github.com/kelindar/mapforge/internal/config"
)

type options struct {
	Config string `short:"c" long:"config" description:"Path to a YAML config overriding output layout and worker count"`
	Args   struct {
		Root       string `positional-arg-name:"game-data-root" description:"Root of the game-server data tree (dat/, map/, mon/, npc/)"`
		OutputName string `positional-arg-name:"output-name" description:"Base name for the emitted .otbm/-house.xml/-spawn.xml files"`
	} `positional-args:"yes" required:"yes"`
}

var description = `Reads objects.srv, houses.dat, houseareas.dat, map.dat, moveuse.dat,
monster.db, map/*.sec, mon/*.mon and npc/*.npc from game-data-root, and
writes output/<output-name>.otbm, output/<output-name>-house.xml,
output/<output-name>-spawn.xml, and a companion OTB item database under
output/rme_config/data/770-cipsoft/.`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "mapforge"
	parser.LongDescription = description

	if _, err := parser.ParseArgs(argv); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mapforge:", err)
		return 1
	}

	pl, err := mapforge.Open(opts.Args.Root, cfg, mapforge.XMLAux{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "mapforge:", err)
		return 1
	}

	res, err := pl.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mapforge:", err)
		return 1
	}

	if err := writeOutputs(cfg, opts.Args.OutputName, res); err != nil {
		fmt.Fprintln(os.Stderr, "mapforge:", err)
		return 1
	}

	printSummary(res.Stats)
	return 0
}

func writeOutputs(cfg config.Config, name string, res *mapforge.Result) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.MkdirAll(cfg.RMEConfigDir, 0o755); err != nil {
		return fmt.Errorf("creating rme config dir: %w", err)
	}
	if err := os.MkdirAll(cfg.LogsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	writes := map[string][]byte{
		filepath.Join(cfg.OutputDir, name+".otbm"):        res.OTBM,
		filepath.Join(cfg.OutputDir, name+"-house.xml"):   res.HouseXML,
		filepath.Join(cfg.OutputDir, name+"-spawn.xml"):   res.SpawnXML,
		filepath.Join(cfg.RMEConfigDir, "items.otb"):      res.OTB,
		filepath.Join(cfg.LogsDir, "debug_attributes.log"): res.DebugLog,
	}
	for path, data := range writes {
		if len(data) == 0 {
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func printSummary(s mapforge.Stats) {
	fmt.Printf("tiles=%d items=%d container_children=%d action_id_items=%d text_items=%d\n",
		s.TilesWritten, s.ItemsWritten, s.ContainerChildItems, s.ActionIDItems, s.TextItems)
	fmt.Printf("creatures_placed=%d npc_centers_shifted=%d\n", s.CreaturesPlaced, s.NPCCentersShifted)
	fmt.Printf("skipped: catalog=%d houses=%d spawns=%d sectors=%d\n",
		s.CatalogSkipped, s.HouseSkipped, s.SpawnSkipped, s.SectorSkipped)
	for _, f := range s.FailedCreatures {
		fmt.Fprintln(os.Stderr, "mapforge: failed to parse creature file:", f)
	}
	for _, f := range s.FailedSectors {
		fmt.Fprintln(os.Stderr, "mapforge: failed to parse sector file:", f)
	}
	for _, w := range s.PlacementWarnings {
		fmt.Fprintln(os.Stderr, "mapforge:", w)
	}
}
