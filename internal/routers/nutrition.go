package routers

import (
	"net/http"

	"nutristat-api/internal/ctx"
	"nutristat-api/internal/handlers/nutrition"
	"nutristat-api/internal/shared"

	"github.com/labstack/echo/v4"
)

type NutritionRouter struct {
	nh *nutrition.NutritionHandler
}

func RegisterNutritionRoutes(e *echo.Group, nh *nutrition.NutritionHandler) {
	nr := NutritionRouter{nh: nh}

	e.POST(shared.ENDPOINTS.PREDICT, nr.Predict)
	e.GET(shared.ENDPOINTS.RECOMMENDATIONS, nr.Recommendations)
	e.GET(shared.ENDPOINTS.DATA, nr.ListHistory)
	e.GET(shared.ENDPOINTS.DATA_BY_ID, nr.GetHistory)
}

func (nr *NutritionRouter) Predict(cc echo.Context) error {
	c := cc.(*ctx.Context)

	body, err := readRequestBody(c)
	if err != nil {
		return writeError(c, shared.ENDPOINTS.PREDICT, shared.ErrMalformedInput)
	}

	output, err := nr.nh.PredictLogic(&nutrition.PredictInput{
		Body: body,
		Ctx:  c.Request().Context(),
		Log:  c.Log,
	})
	if err != nil {
		return writeError(c, shared.ENDPOINTS.PREDICT, err)
	}

	c.LogValues.Category = string(output.Prediction)
	c.LogValues.RecordID = output.Record.ID
	return c.JSON(http.StatusOK, output)
}

func (nr *NutritionRouter) Recommendations(cc echo.Context) error {
	c := cc.(*ctx.Context)

	c.LogValues.Category = c.QueryParam("category")
	output, err := nr.nh.RecommendLogic(&nutrition.RecommendInput{
		Category: c.QueryParam("category"),
		N:        c.QueryParam("n"),
	})
	if err != nil {
		return writeError(c, shared.ENDPOINTS.RECOMMENDATIONS, err)
	}
	return c.JSON(http.StatusOK, output)
}

func (nr *NutritionRouter) ListHistory(cc echo.Context) error {
	c := cc.(*ctx.Context)

	records, err := nr.nh.ListHistoryLogic(c.Request().Context())
	if err != nil {
		return writeError(c, shared.ENDPOINTS.DATA, err)
	}
	return c.JSON(http.StatusOK, records)
}

func (nr *NutritionRouter) GetHistory(cc echo.Context) error {
	c := cc.(*ctx.Context)

	record, err := nr.nh.GetHistoryLogic(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, shared.ENDPOINTS.DATA_BY_ID, err)
	}
	c.LogValues.RecordID = record.ID
	return c.JSON(http.StatusOK, record)
}
