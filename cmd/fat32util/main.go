// Command fat32util is a small inspection and editing tool for FAT32
// volumes on GPT-partitioned disk images, built the same way the
// teacher's cmd/main.go builds its image-management CLI: a urfave/cli.App
// with one subcommand per operation.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dargueta/gofat32/eviction"
	"github.com/dargueta/gofat32/fs"
	"github.com/dargueta/gofat32/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Usage: "Inspect and edit FAT32 volumes on GPT-partitioned disk images",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List the contents of a directory",
				Action:    lsCommand,
				ArgsUsage: "IMAGE_FILE [PATH]",
			},
			{
				Name:      "cat",
				Usage:     "Print the contents of a file",
				Action:    catCommand,
				ArgsUsage: "IMAGE_FILE PATH",
			},
			{
				Name:      "mkdir",
				Usage:     "Create a subdirectory",
				Action:    mkdirCommand,
				ArgsUsage: "IMAGE_FILE PATH",
			},
			{
				Name:      "rm",
				Usage:     "Delete a directory entry",
				Action:    rmCommand,
				ArgsUsage: "IMAGE_FILE PATH",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func mountFromArgs(imagePath string) (*fs.FS, *storage.FilePort, error) {
	port, err := storage.OpenFilePort(imagePath, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	volume, err := fs.Mount(port, 256, eviction.UnmodifiedFirst(eviction.LeastRecentlyAccessed))
	if err != nil {
		port.Close()
		return nil, nil, err
	}

	return volume, port, nil
}

func lsCommand(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return fmt.Errorf("ls requires an image file argument")
	}

	path := "/"
	if c.Args().Len() > 1 {
		path = c.Args().Get(1)
	}

	volume, port, err := mountFromArgs(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer port.Close()
	defer volume.Unmount()

	entries, err := volume.ReadDir(path)
	if err != nil {
		return err
	}

	for _, e := range entries {
		kind := "-"
		if e.IsDir() {
			kind = "d"
		}
		fmt.Printf("%s %10d %s\n", kind, e.FileSize, e.FileName())
	}
	return nil
}

func catCommand(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("cat requires an image file and a path")
	}

	volume, port, err := mountFromArgs(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer port.Close()
	defer volume.Unmount()

	entry, err := volume.Stat(c.Args().Get(1))
	if err != nil {
		return err
	}

	data, err := volume.ReadFile(c.Args().Get(1), 0, int(entry.FileSize))
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(data)
	return err
}

func mkdirCommand(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("mkdir requires an image file and a path")
	}

	volume, port, err := mountFromArgs(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer port.Close()
	defer volume.Unmount()

	name := eightDotThreeName(c.Args().Get(1))
	return volume.Mkdir(c.Args().Get(1), name)
}

func rmCommand(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("rm requires an image file and a path")
	}

	volume, port, err := mountFromArgs(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer port.Close()
	defer volume.Unmount()

	return volume.Remove(c.Args().Get(1))
}

// eightDotThreeName extracts the final path component and space-pads it
// into an 8-byte 8.3 name field, truncating anything longer; this tool
// targets simple ASCII names and leaves LFN synthesis out of scope.
func eightDotThreeName(path string) [8]byte {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			base = path[i+1:]
			break
		}
	}

	var name [8]byte
	for i := range name {
		name[i] = ' '
	}
	copy(name[:], base)
	return name
}
