// Command masktool inspects and edits mask archives: list, merge,
// rename, remove, and threshold-mask generation from a detector image.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"xrd-template/internal/config"
	"xrd-template/internal/image"
	"xrd-template/internal/mask"
	"xrd-template/internal/threshold"
	"xrd-template/internal/version"
)

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func main() {
	sessionPath := flag.String("session", "", "Path to session file (.xrdsess)")
	archivePath := flag.String("archive", "", "Path to mask archive (JSON)")
	mergePath := flag.String("merge", "", "Second archive to merge in")
	renameSpec := flag.String("rename", "", "Rename a mask: old=new")
	removeName := flag.String("remove", "", "Remove a mask by name")
	showName := flag.String("show", "", "Mark a mask visible (or 'all')")
	hideName := flag.String("hide", "", "Mark a mask hidden (or 'all')")
	imagePath := flag.String("image", "", "Detector image for threshold mask generation")
	thresholdVal := flag.Float64("threshold", 0, "Threshold cutoff value")
	comparison := flag.String("comparison", "greater", "Threshold comparison: greater or less")
	outPath := flag.String("out", "", "Write the resulting archive to this path")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (%s, built %s)\n",
			version.AppName, version.Version, version.GitCommit, version.BuildTime)
		return
	}
	if *sessionPath != "" {
		sess, err := config.Load(*sessionPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load session: %v\n", err)
			os.Exit(1)
		}
		for _, w := range sess.Validate() {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		if *archivePath == "" {
			*archivePath = sess.GetMasksPath(*sessionPath)
		}
		if *imagePath == "" {
			*imagePath = sess.GetImagePath(*sessionPath)
		}
		if !flagSet("comparison") {
			*comparison = sess.Settings.ThresholdComparison
		}
		if !flagSet("threshold") {
			*thresholdVal = sess.Settings.ThresholdValue
		}
		fmt.Printf("Session: %s (%s)\n", sess.Name, *sessionPath)
	}

	if *archivePath == "" && *imagePath == "" {
		fmt.Println("Usage: masktool [-session <path>] -archive <path> [-merge <path>] [-rename old=new] [-remove name] [-show name|all] [-hide name|all] [-out <path>]")
		fmt.Println("       masktool -image <path> -threshold <value> [-comparison greater|less] -out <path>")
		os.Exit(1)
	}

	cfg := threshold.NewConfig()
	reg := mask.NewRegistry(cfg)

	if *archivePath != "" {
		n, err := reg.LoadArchive(*archivePath)
		switch {
		case err == nil:
			fmt.Printf("Loaded %d masks from %s\n", n, *archivePath)
		case *sessionPath != "" && errors.Is(err, os.ErrNotExist):
			// The session names an archive that has not been written yet.
			fmt.Printf("No archive at %s, starting empty\n", *archivePath)
		default:
			fmt.Fprintf(os.Stderr, "Failed to load archive: %v\n", err)
			os.Exit(1)
		}
	}

	if *mergePath != "" {
		n, err := reg.LoadArchive(*mergePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to merge archive: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Merged %d masks from %s (duplicates skipped)\n", n, *mergePath)
	}

	if *imagePath != "" {
		buf, err := image.Load(*imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
			os.Exit(1)
		}
		cmp, err := threshold.ParseComparison(*comparison)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg.Comparison = cmp
		cfg.Value = *thresholdVal

		arr, err := threshold.Compute(buf, *cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Threshold failed: %v\n", err)
			os.Exit(1)
		}
		name, ok := reg.ActivateThreshold(arr)
		if !ok {
			fmt.Fprintln(os.Stderr, "A threshold mask already exists in the archive")
			os.Exit(1)
		}
		fmt.Printf("Threshold mask %q: %d of %d pixels flagged (%s %g)\n",
			name, arr.Count(), buf.W*buf.H, cmp, cfg.Value)
	}

	if *renameSpec != "" {
		parts := strings.SplitN(*renameSpec, "=", 2)
		if len(parts) != 2 {
			fmt.Fprintln(os.Stderr, "Rename spec must be old=new")
			os.Exit(1)
		}
		reg.BeginRename(parts[0])
		if !reg.CommitRename(parts[1]) {
			fmt.Fprintf(os.Stderr, "Failed to rename %q to %q\n", parts[0], parts[1])
			os.Exit(1)
		}
		fmt.Printf("Renamed %q to %q\n", parts[0], parts[1])
	}

	if *removeName != "" {
		reg.Remove(*removeName)
		fmt.Printf("Removed %q\n", *removeName)
	}

	if *showName == "all" {
		reg.ShowAll()
	} else if *showName != "" {
		reg.SetVisibility(*showName, true)
	}
	if *hideName == "all" {
		reg.HideAll()
	} else if *hideName != "" {
		reg.SetVisibility(*hideName, false)
	}

	fmt.Printf("\n%d masks:\n", reg.Count())
	fmt.Printf("%-20s %-10s %-12s %-8s %s\n", "NAME", "TYPE", "DETECTOR", "VISIBLE", "PAYLOAD")
	for _, name := range reg.Names() {
		e, _ := reg.Get(name)
		payload := ""
		switch {
		case e.Polygon != nil:
			payload = fmt.Sprintf("%d loops, %d vertices",
				len(e.Polygon.Loops), e.Polygon.VertexCount())
		case e.Array != nil:
			payload = fmt.Sprintf("%dx%d raster, %d set", e.Array.W, e.Array.H, e.Array.Count())
		}
		fmt.Printf("%-20s %-10s %-12s %-8v %s\n", e.Name, e.Type, e.Detector, reg.IsVisible(name), payload)
	}

	if *outPath != "" {
		if err := reg.SaveArchive(*outPath, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write archive: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %d masks to %s\n", reg.Count(), *outPath)
	}
}
