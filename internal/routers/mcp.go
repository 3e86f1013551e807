package routers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"nutristat-api/internal/ctx"
	"nutristat-api/internal/handlers/nutrition"
	"nutristat-api/internal/shared"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/labstack/echo/v4"
)

// Tool names served on the mcp endpoint
const (
	ToolPredictNutrition = "predict_nutrition"
	ToolRecommendFoods   = "recommend_foods"
	ToolListHistory      = "list_history"
	ToolGetHistory       = "get_history"
)

type MCPRouter struct {
	nh    *nutrition.NutritionHandler
	tools map[string]func(c *ctx.Context, req *protocol.CallToolRequest) (any, error)
}

func RegisterMCPRoutes(e *echo.Group, nh *nutrition.NutritionHandler) {
	mr := &MCPRouter{nh: nh}
	mr.tools = map[string]func(*ctx.Context, *protocol.CallToolRequest) (any, error){
		ToolPredictNutrition: mr.predict,
		ToolRecommendFoods:   mr.recommend,
		ToolListHistory:      mr.listHistory,
		ToolGetHistory:       mr.getHistory,
	}
	e.POST(shared.ENDPOINTS.MCP, mr.CallTool)
}

// CallTool runs one tool call. Tool level failures are reported inside the
// result with isError set; only undecodable requests and unknown tools
// change the HTTP status.
func (mr *MCPRouter) CallTool(cc echo.Context) error {
	c := cc.(*ctx.Context)

	var request protocol.CallToolRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&request); err != nil {
		c.LogValues.AddError(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid JSON: %v", err)})
	}

	tool, ok := mr.tools[request.Name]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Unknown tool: %s", request.Name)})
	}
	c.Log.Debugw("Tool call", "tool", request.Name)

	out, err := tool(c, &request)
	if err != nil {
		c.LogValues.AddError(err)
		_, body := classifyError(err)
		return c.JSON(http.StatusOK, textResult(body, true))
	}
	return c.JSON(http.StatusOK, textResult(out, false))
}

func textResult(data any, isError bool) *protocol.CallToolResult {
	text, err := json.Marshal(data)
	if err != nil {
		text = []byte(err.Error())
		isError = true
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			&protocol.TextContent{
				Type: "text",
				Text: string(text),
			},
		},
		IsError: isError,
	}
}

// argument returns a tool argument in the string form the query and path
// parameters of the http endpoints use.
func argument(req *protocol.CallToolRequest, name string) string {
	v, ok := req.Arguments[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func (mr *MCPRouter) predict(c *ctx.Context, req *protocol.CallToolRequest) (any, error) {
	body, err := json.Marshal(req.Arguments)
	if err != nil {
		return nil, shared.ErrMalformedInput
	}
	out, err := mr.nh.PredictLogic(&nutrition.PredictInput{
		Body: body,
		Ctx:  c.Request().Context(),
		Log:  c.Log,
	})
	if err != nil {
		return nil, err
	}
	c.LogValues.Category = string(out.Prediction)
	c.LogValues.RecordID = out.Record.ID
	return out, nil
}

func (mr *MCPRouter) recommend(_ *ctx.Context, req *protocol.CallToolRequest) (any, error) {
	return mr.nh.RecommendLogic(&nutrition.RecommendInput{
		Category: argument(req, "category"),
		N:        argument(req, "n"),
	})
}

func (mr *MCPRouter) listHistory(c *ctx.Context, _ *protocol.CallToolRequest) (any, error) {
	return mr.nh.ListHistoryLogic(c.Request().Context())
}

func (mr *MCPRouter) getHistory(c *ctx.Context, req *protocol.CallToolRequest) (any, error) {
	return mr.nh.GetHistoryLogic(c.Request().Context(), argument(req, "id"))
}
