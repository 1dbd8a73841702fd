// Command templatetool places a Cartesian template on a detector image,
// applies rotation and scaling, and reports the resulting crop bounds.
package main

import (
	"flag"
	"fmt"
	"os"

	"xrd-template/internal/config"
	"xrd-template/internal/image"
	"xrd-template/internal/panel"
	"xrd-template/internal/template"
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
	imagePath := flag.String("image", "", "Path to detector image (TIFF, PNG, or JPEG)")
	templatePath := flag.String("template", "", "Path to template vertex file")
	pixelSize := flag.Float64("pixel", config.DefaultPixelSize, "Detector pixel size in mm")
	rotate := flag.Float64("rotate", 0, "Rotation to apply in degrees")
	scale := flag.Float64("scale", 1, "Scale factor to apply")
	crop := flag.Bool("crop", false, "Crop the image to the template bounds")
	maskOut := flag.Bool("mask", false, "Zero every pixel outside the template")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (%s, built %s)\n",
			version.AppName, version.Version, version.GitCommit, version.BuildTime)
		return
	}

	hitTolerance := config.DefaultHitTolerance
	if *sessionPath != "" {
		sess, err := config.Load(*sessionPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load session: %v\n", err)
			os.Exit(1)
		}
		for _, w := range sess.Validate() {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		if *imagePath == "" {
			*imagePath = sess.GetImagePath(*sessionPath)
		}
		if *templatePath == "" {
			*templatePath = sess.GetTemplatePath(*sessionPath)
		}
		if !flagSet("pixel") {
			*pixelSize = sess.PixelSize
		}
		hitTolerance = sess.Settings.HitTolerance
		fmt.Printf("Session: %s (%s)\n", sess.Name, *sessionPath)
	}

	if *imagePath == "" || *templatePath == "" {
		fmt.Println("Usage: templatetool [-session <path>] -image <path> -template <path> [-pixel 0.1] [-rotate deg] [-scale f] [-crop] [-mask]")
		os.Exit(1)
	}

	buf, err := image.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded image: %dx%d pixels\n", buf.W, buf.H)

	verts, err := panel.LoadTemplate(*templatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load template: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Template vertices: %d\n", len(verts))

	det := panel.NewPlanarPanel(buf.H, buf.W, *pixelSize)
	tm := template.New(buf)
	tm.SetHitTester(template.ToleranceHitTester(hitTolerance))
	if err := tm.CreateShape(verts, det); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to place template: %v\n", err)
		os.Exit(1)
	}

	mid := tm.Midpoint()
	fmt.Printf("Placed template midpoint: (%.2f, %.2f)\n", mid.X, mid.Y)

	if *rotate != 0 {
		tm.RotateBy(*rotate)
		fmt.Printf("Rotated by %.2f deg\n", *rotate)
	}
	if *scale != 1 {
		tm.ScaleBy(*scale, *scale)
		fmt.Printf("Scaled by %.3f\n", *scale)
	}

	top, bottom, left, right, err := tm.CropBounds()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to compute crop bounds: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nCrop bounds:\n")
	fmt.Printf("  Left:   %d\n", left)
	fmt.Printf("  Right:  %d\n", right)
	fmt.Printf("  Top:    %d\n", top)
	fmt.Printf("  Bottom: %d\n", bottom)

	if *maskOut {
		mask, err := tm.ApplyMask()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to mask image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nMasked image: %d of %d pixels kept\n", mask.Count(), buf.W*buf.H)
	}

	if *crop {
		cropped, err := tm.CropToTemplate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to crop image: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nCropped image: %dx%d pixels\n", cropped.W, cropped.H)
	}
}
