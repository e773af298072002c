package notion

import (
	"fmt"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/tool"
)

// Tool names exposed to models.
const (
	SearchToolName      = "search_my_notion"
	PageContentToolName = "get_notion_page_content"
)

// SearchArgs are the arguments of search_my_notion.
type SearchArgs struct {
	Query               string `json:"query" description:"Search query to look up"`
	SortLastEditingTime bool   `json:"sort_last_editing_time,omitempty" default:"true" description:"Show the most recently edited documents first."`
	StartCursor         string `json:"start_cursor,omitempty" description:"A cursor value returned in a previous response. If supplied, limits the response to results starting after the cursor. If not supplied, the first page of results is returned."`
	PageSize            int    `json:"page_size,omitempty" default:"10" minimum:"1" maximum:"100" description:"The number of documents to return"`
}

// PageContentArgs are the arguments of get_notion_page_content.
type PageContentArgs struct {
	PageID      string `json:"page_id" description:"Page id to get content from."`
	StartCursor string `json:"start_cursor,omitempty" description:"If supplied, returns a page of results starting after the cursor provided. If not supplied, returns the first page of results."`
}

// NewSearchTool wraps api.Search as a tool.
func NewSearchTool(api API) tool.Tool {
	return tool.NewTypedTool(SearchToolName,
		"Search over documents in Notion workspace. "+
			"If the user is asking to search something in his notes, you can use this tool. "+
			"If an error occurs, show to user all debug information.",
		func(tc *core.ToolContext, args SearchArgs) (any, error) {
			direction := SortAscending
			if args.SortLastEditingTime {
				direction = SortDescending
			}

			res, err := api.Search(tc.Context(), SearchRequest{
				Query:       args.Query,
				Sort:        &Sort{Direction: direction, Timestamp: "last_edited_time"},
				StartCursor: args.StartCursor,
				PageSize:    args.PageSize,
			})
			if err != nil {
				tc.Logger().Warn("notion.search.failed", "query", args.Query, "error", err.Error())
				return describeError(err), nil
			}

			return res, nil
		})
}

// NewPageContentTool wraps api.BlockChildren as a tool with a fixed page size.
func NewPageContentTool(api API) tool.Tool {
	return tool.NewTypedTool(PageContentToolName,
		"Get a page content in Notion workspace. "+
			"If the user is asking to get some content from his notes, you can use this tool. "+
			"If an error occurs, show to user all debug information.",
		func(tc *core.ToolContext, args PageContentArgs) (any, error) {
			res, err := api.BlockChildren(tc.Context(), args.PageID, args.StartCursor, PageContentPageSize)
			if err != nil {
				tc.Logger().Warn("notion.page_content.failed", "page_id", args.PageID, "error", err.Error())
				return describeError(err), nil
			}

			return res, nil
		})
}

// Tools returns both Notion tools bound to api.
func Tools(api API) []tool.Tool {
	return []tool.Tool{NewSearchTool(api), NewPageContentTool(api)}
}

// describeError renders an upstream failure as text for the model.
func describeError(err error) string {
	return fmt.Sprintf("Notion request failed: %v", err)
}
