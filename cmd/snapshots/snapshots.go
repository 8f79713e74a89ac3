package snapshots

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cmd"
	resticCli "github.com/safestic/safestic/restic/cli"
	"github.com/safestic/safestic/restic/dto"
)

var (
	Command = &cli.Command{
		Name:        "snapshots",
		Description: "List the snapshots in the repository",
		Action:      listMain,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "tag",
				Usage: "only list snapshots carrying this tag; repeatable",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the snapshot list as JSON",
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:        "files",
				Description: "List the files contained in a snapshot",
				Action:      filesMain,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "snapshot",
						Usage: "full or short snapshot ID; defaults to the latest snapshot",
					},
				},
			},
		},
	}
)

func listMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "snapshots")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	list, err := app.Restic.Snapshots(c.Context, resticCli.ArrayOpts(c.StringSlice("tag")))
	if err != nil {
		return app.Fail(err)
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(list); err != nil {
			return app.Fail(err)
		}
		return nil
	}

	printTable(list)
	return nil
}

func filesMain(c *cli.Context) error {
	app, err := cmd.Setup(c, "snapshots")
	if err != nil {
		return cmd.Fatal(err)
	}
	defer app.Close()

	snapshot, err := app.Restic.SnapshotInfo(c.Context, c.String("snapshot"))
	if err != nil {
		return app.Fail(err)
	}

	files, err := app.Restic.ListFiles(c.Context, snapshot.ShortID)
	if err != nil {
		return app.Fail(err)
	}
	for _, file := range files {
		fmt.Println(file)
	}
	return nil
}

func printTable(list []dto.Snapshot) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tHOST\tTAGS\tPATHS")
	for _, snapshot := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			snapshot.ShortID,
			snapshot.Time.Format("2006-01-02 15:04:05"),
			snapshot.Hostname,
			strings.Join(snapshot.Tags, ","),
			strings.Join(snapshot.Paths, ","))
	}
	fmt.Fprintf(w, "\n%d snapshots\n", len(list))
	_ = w.Flush()
}
