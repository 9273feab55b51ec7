package upstreamtest

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func (u *Upstream) registerRoutes() {
	u.app.Use(func(c *fiber.Ctx) error {
		query, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
		u.mu.Lock()
		u.requests = append(u.requests, Request{Path: strings.Clone(c.Path()), Query: query})
		u.mu.Unlock()
		return c.Next()
	})

	u.app.Get("/data/2.5/weather", func(c *fiber.Ctx) error {
		if status, ok := u.checkWeather(c); !ok {
			return u.weatherError(c, status)
		}
		return c.JSON(fiber.Map{
			"coord":   fiber.Map{"lat": c.Query("lat"), "lon": c.Query("lon")},
			"weather": []fiber.Map{{"main": "Clouds", "description": "overcast clouds"}},
			"main":    fiber.Map{"temp": 12.5, "humidity": 81},
			"wind":    fiber.Map{"speed": 3.1},
			"name":    "Paris",
			"cod":     200,
		})
	})

	u.app.Get("/data/2.5/forecast", func(c *fiber.Ctx) error {
		if status, ok := u.checkWeather(c); !ok {
			return u.weatherError(c, status)
		}

		cnt := c.QueryInt("cnt", 40)
		list := make([]fiber.Map, 0, cnt)
		for i := 0; i < cnt; i++ {
			ts := ForecastStart.Add(time.Duration(i) * 3 * time.Hour)
			list = append(list, fiber.Map{
				"dt":      ts.Unix(),
				"main":    fiber.Map{"temp": float64(i) + 0.5},
				"weather": []fiber.Map{{"main": "Rain", "description": "light rain"}},
				"wind":    fiber.Map{"speed": 2.0},
				"dt_txt":  ts.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(fiber.Map{"cod": "200", "cnt": cnt, "list": list})
	})

	u.app.Get("/geocode/v1/json", func(c *fiber.Ctx) error {
		u.mu.Lock()
		valid := u.geocodeKeys[c.Query("key")]
		candidates := u.places[c.Query("q")]
		u.mu.Unlock()

		if !valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":        fiber.Map{"code": 401, "message": "invalid API key"},
				"results":       []fiber.Map{},
				"total_results": 0,
			})
		}
		if c.Query("q") == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status": fiber.Map{"code": 400, "message": "missing query"},
			})
		}

		results := make([]fiber.Map, 0, len(candidates))
		for _, p := range candidates {
			results = append(results, fiber.Map{
				"formatted": p.formatted,
				"geometry":  fiber.Map{"lat": p.lat, "lng": p.lng},
			})
		}
		return c.JSON(fiber.Map{
			"status":        fiber.Map{"code": 200, "message": "OK"},
			"results":       results,
			"total_results": len(results),
		})
	})
}

// checkWeather returns the status to answer with and whether the request may
// proceed normally.
func (u *Upstream) checkWeather(c *fiber.Ctx) (int, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.weatherKeys[c.Query("appid")] {
		return fiber.StatusUnauthorized, false
	}
	if u.weatherStatus != 0 {
		return u.weatherStatus, false
	}
	return fiber.StatusOK, true
}

func (u *Upstream) weatherError(c *fiber.Ctx, status int) error {
	msg := "Invalid API key. Please see https://openweathermap.org/faq#error401 for more info."
	if status != fiber.StatusUnauthorized {
		msg = "upstream failure " + strconv.Itoa(status)
	}
	return c.Status(status).JSON(fiber.Map{"cod": status, "message": msg})
}
