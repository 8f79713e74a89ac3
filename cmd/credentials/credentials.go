package credentials

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/safestic/safestic/cmd"
	"github.com/safestic/safestic/credentials"
)

var (
	Command = &cli.Command{
		Name:        "credentials",
		Description: "Inspect and manage the configured credential source",
		Subcommands: []*cli.Command{
			{
				Name:        "get",
				Description: "Print whether a credential resolves; the value itself is never printed",
				ArgsUsage:   "KEY",
				Action:      getMain,
			},
			{
				Name:        "set",
				Description: "Store a credential in the configured source",
				ArgsUsage:   "KEY VALUE",
				Action:      setMain,
			},
			{
				Name:        "check",
				Description: "Verify that the required credentials resolve",
				Action:      checkMain,
			},
		},
	}
)

func getMain(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: credentials get KEY", 1)
	}
	resolver, err := cmd.NewResolver(c)
	if err != nil {
		return cmd.Fatal(err)
	}

	key := c.Args().Get(0)
	if _, ok := resolver.Get(c.Context, key); !ok {
		return cli.Exit(fmt.Sprintf("%s: not found", key), 1)
	}
	fmt.Printf("%s: found\n", key)
	return nil
}

func setMain(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: credentials set KEY VALUE", 1)
	}
	resolver, err := cmd.NewResolver(c)
	if err != nil {
		return cmd.Fatal(err)
	}

	key := c.Args().Get(0)
	if err := resolver.Set(key, c.Args().Get(1)); err != nil {
		return cmd.Fatal(err)
	}
	fmt.Printf("%s: stored\n", key)
	return nil
}

func checkMain(c *cli.Context) error {
	resolver, err := cmd.NewResolver(c)
	if err != nil {
		return cmd.Fatal(err)
	}
	log := cmd.Logger(c, "credentials")

	missing := 0
	if _, ok := resolver.Get(c.Context, credentials.PasswordKey); ok {
		fmt.Printf("%-32s found (required)\n", credentials.PasswordKey)
	} else {
		fmt.Printf("%-32s MISSING (required)\n", credentials.PasswordKey)
		missing++
	}

	for _, key := range credentials.ProviderKeys() {
		if _, ok := resolver.Get(c.Context, key); ok {
			fmt.Printf("%-32s found\n", key)
		} else {
			fmt.Printf("%-32s absent\n", key)
		}
	}

	if missing > 0 {
		log.Info("credential check failed", "missing", missing)
		return cli.Exit("required credentials are missing", 1)
	}
	return nil
}
