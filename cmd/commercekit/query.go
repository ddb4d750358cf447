package main

import (
	"github.com/spf13/cobra"

	"github.com/artpar/commercekit/domain/request"
)

var queryCmd = &cobra.Command{
	Use:   "query <resource>",
	Short: "Query a resource collection",
	Long: `Query a resource collection and print the result page as JSON.

Examples:
  commercekit query stores
  commercekit query categories --where 'key="shoes"' --limit 5
  commercekit query carts --sort 'createdAt desc' --offset 20 --no-total`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var (
	queryWhere   []string
	querySort    []string
	queryExpand  []string
	queryLimit   int
	queryOffset  int
	queryNoTotal bool
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringArrayVar(&queryWhere, "where", nil, "query predicate (repeatable)")
	queryCmd.Flags().StringArrayVar(&querySort, "sort", nil, "sort expression (repeatable)")
	queryCmd.Flags().StringSliceVar(&queryExpand, "expand", nil, "reference paths to expand")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "page size (server default when 0)")
	queryCmd.Flags().IntVar(&queryOffset, "offset", 0, "number of results to skip")
	queryCmd.Flags().BoolVar(&queryNoTotal, "no-total", false, "skip computing the total count")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ep, err := endpoint(args[0])
	if err != nil {
		return err
	}
	r := queryRequest(ep)

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	page, err := a.Client.Execute(cmd.Context(), r)
	if err != nil {
		return err
	}
	return printJSON(cmd, page)
}

func queryRequest(ep request.Endpoint) *request.Request {
	r := request.Query(ep)
	for _, w := range queryWhere {
		r.Where(w)
	}
	for _, s := range querySort {
		r.Sort(s)
	}
	for _, e := range queryExpand {
		r.Expand(e)
	}
	if queryLimit > 0 {
		r.Limit(queryLimit)
	}
	if queryOffset > 0 {
		r.Offset(queryOffset)
	}
	if queryNoTotal {
		r.WithTotal(false)
	}
	return r
}
