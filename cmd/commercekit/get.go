package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/commercekit/domain/commerce"
	"github.com/artpar/commercekit/domain/request"
)

var getCmd = &cobra.Command{
	Use:   "get <resource> <id | key=KEY | container/key>",
	Short: "Fetch a single resource",
	Long: `Fetch a resource by id or by key and print it as JSON.

Custom objects are addressed as container/key. A bare container name
lists the objects in that container.

Examples:
  commercekit get stores 9f1c2c8e-0a53-4c55-9a43-1b0fd1c1a1e2
  commercekit get categories key=shoes --expand parent
  commercekit get custom-objects settings/checkout`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

var getExpand []string

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringSliceVar(&getExpand, "expand", nil, "reference paths to expand")
}

func runGet(cmd *cobra.Command, args []string) error {
	r, err := fetchRequest(args[0], args[1])
	if err != nil {
		return err
	}
	for _, path := range getExpand {
		r.Expand(path)
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	obj, err := a.Client.Execute(cmd.Context(), r)
	if err != nil {
		return err
	}
	return printJSON(cmd, obj)
}

func fetchRequest(resource, ref string) (*request.Request, error) {
	ep, err := endpoint(resource)
	if err != nil {
		return nil, err
	}
	if ep.Path == commerce.CustomObjects.Path {
		if container, key, ok := strings.Cut(ref, "/"); ok {
			return commerce.CustomObjectFetchByContainerAndKey(container, key), nil
		}
		return commerce.CustomObjectsInContainer(ref), nil
	}
	if key, ok := strings.CutPrefix(ref, "key="); ok {
		return request.FetchByKey(ep, key), nil
	}
	return request.FetchByID(ep, ref), nil
}
