// Command squaregif crops an existing GIF to a square aspect ratio.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"makegif/internal/params"
	"makegif/internal/square"
	"makegif/internal/ui"
)

func main() {
	err := command.Run(context.Background(), os.Args)
	if err != nil {
		ui.Errorf("%v", err)
		os.Exit(1)
	}
}

var command = &cli.Command{
	Name:      "squaregif",
	Usage:     "Crop a GIF to a square, keeping the chosen side of the longer axis",
	ArgsUsage: "<input.gif> <output.gif> [left|right|center|top|bottom]",
}

func init() {
	command.Action = action
}

func action(ctx context.Context, c *cli.Command) error {
	args := c.Args().Slice()
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: squaregif %s", command.ArgsUsage)
	}

	in := params.ExpandHome(args[0])
	out := params.ExpandHome(args[1])
	if err := params.CheckGifPath(in); err != nil {
		return err
	}
	if err := params.CheckGifPath(out); err != nil {
		return err
	}

	alignment := square.AlignCenter
	if len(args) == 3 {
		var err error
		if alignment, err = square.ParseAlignment(args[2]); err != nil {
			return err
		}
	}

	if err := square.CropGIF(in, out, alignment); err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", out)
	return nil
}
