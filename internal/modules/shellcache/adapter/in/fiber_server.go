package in

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	"worktime/internal/modules/shellcache/dto"
	shellin "worktime/internal/modules/shellcache/port/in"
	"worktime/internal/platform/log"
)

const cacheHeader = "X-Worktime-Cache"

// NewFiberApp serves the shell from the cache, proxying misses to origin.
// Control endpoints live under /_shell.
func NewFiberApp(usecase shellin.Usecase, origin string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "worktime shell",
		StrictRouting:         true,
		CaseSensitive:         true,
		DisableStartupMessage: true,
		JSONEncoder:           jsoniter.Marshal,
		JSONDecoder:           jsoniter.Unmarshal,
	})
	handler := fiberHandler{usecase: usecase, origin: strings.TrimRight(origin, "/")}

	control := app.Group("/_shell")
	control.Get("/status", handler.status)
	control.Post("/install", handler.install)
	control.Post("/activate", handler.activate)
	app.Use(handler.serve)
	return app
}

type fiberHandler struct {
	usecase shellin.Usecase
	origin  string
}

func (h fiberHandler) status(c *fiber.Ctx) error {
	out, err := h.usecase.Status(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(out)
}

func (h fiberHandler) install(c *fiber.Ctx) error {
	out, err := h.usecase.Install(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(out)
}

func (h fiberHandler) activate(c *fiber.Ctx) error {
	out, err := h.usecase.Activate(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(out)
}

func (h fiberHandler) serve(c *fiber.Ctx) error {
	path := c.Path()
	if path == "/" {
		path = "/index.html"
	}
	target := h.origin + path
	if query := string(c.Request().URI().QueryString()); query != "" {
		target += "?" + query
	}
	header := map[string][]string{}
	c.Request().Header.VisitAll(func(key, value []byte) {
		header[string(key)] = append(header[string(key)], string(value))
	})
	out, err := h.usecase.Fetch(c.UserContext(), dto.FetchInput{
		Method: c.Method(),
		URL:    target,
		Header: header,
		Body:   append([]byte(nil), c.Body()...),
	})
	if err != nil {
		log.Warn(log.Fields{"url": target, "error": err.Error()}, "[shellcache.serve] fetch failed")
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fiber.NewError(fiber.StatusBadGateway, "origin unavailable")
	}
	// origin headers arrive already stripped of hop-by-hop fields
	for name, values := range out.Header {
		for i, v := range values {
			if i == 0 {
				c.Set(name, v)
			} else {
				c.Response().Header.Add(name, v)
			}
		}
	}
	if out.ContentType != "" {
		c.Set(fiber.HeaderContentType, out.ContentType)
	}
	if out.FromCache {
		c.Set(cacheHeader, "hit")
	} else {
		c.Set(cacheHeader, "miss")
	}
	return c.Status(out.Status).Send(out.Body)
}
