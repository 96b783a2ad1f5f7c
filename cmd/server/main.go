package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"shopsphere-web/internal/backend"
	"shopsphere-web/internal/models"
	"shopsphere-web/internal/preview"
	"shopsphere-web/internal/services"
	"shopsphere-web/internal/session"
	"shopsphere-web/pkg/cache"
)

const sessionCookie = "ss_session"

var (
	rateLimiters = make(map[string]*rate.Limiter)
	rateMutex    = &sync.RWMutex{}
)

// Inline wording for the message keys the storefront service reports.
var flashMessages = map[string]string{
	services.MsgAIFailed:  "Our AI could not find a recommendation for that. Try rephrasing your query.",
	services.MsgNotImage:  "That file is not an image. Please choose a photo to search with.",
	services.MsgNotReady:  "Image search is still warming up. Please try again in a moment.",
	services.MsgNoMatches: "No visually similar products found. Try a different image.",
	services.MsgImageFail: "Image search failed. Please try again.",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}

	backendURL := os.Getenv("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:8000"
	}

	redisCache := cache.NewRedisCache()
	client := backend.NewClient(backendURL)

	previews, err := preview.NewStore(os.Getenv("PREVIEW_DIR"))
	if err != nil {
		log.Fatal("Failed to create preview store:", err)
	}
	defer previews.Close()

	sessions := session.NewStore(redisCache)
	storefront := services.NewStorefrontService(client, redisCache, sessions, previews)

	r := gin.Default()
	r.LoadHTMLGlob("web/templates/*.html")
	r.Static("/static", "./web/static")
	r.StaticFile("/placeholder.svg", "./web/static/placeholder.svg")

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Add request ID middleware
	r.Use(func(c *gin.Context) {
		requestID := fmt.Sprintf("%d", time.Now().UnixNano())
		c.Header("X-Request-ID", requestID)
		start := time.Now()
		c.Next()
		log.Printf("[%s] %s %s - %v - %d",
			requestID, c.Request.Method, c.Request.URL.Path,
			time.Since(start), c.Writer.Status())
	})

	r.Use(rateLimitMiddleware())

	// Landing page. An explicit ?category= parameter syncs the selected
	// category (empty value clears it) so filtered views stay
	// bookmarkable; without the parameter the session state stands.
	r.GET("/", func(c *gin.Context) {
		sessionID := ensureSession(c)

		if category, present := c.GetQuery("category"); present {
			storefront.SetCategory(sessionID, category)
		}

		message := flashMessages[c.Query("msg")]
		view := storefront.Landing(c.Request.Context(), sessionID, message)
		c.HTML(http.StatusOK, "landing", view)
	})

	// Category toggle: clicking the selected category clears it. The
	// redirect writes the outcome into the URL.
	r.POST("/category", func(c *gin.Context) {
		sessionID := ensureSession(c)
		category := c.PostForm("category")

		selected := storefront.ToggleCategory(sessionID, category)
		if selected == "" {
			c.Redirect(http.StatusSeeOther, "/#categories")
			return
		}
		c.Redirect(http.StatusSeeOther, "/?category="+url.QueryEscape(selected)+"#categories")
	})

	r.POST("/search/mode", func(c *gin.Context) {
		sessionID := ensureSession(c)
		storefront.SetMode(sessionID, models.ParseMode(c.PostForm("mode")))
		c.Redirect(http.StatusSeeOther, "/")
	})

	r.POST("/search", func(c *gin.Context) {
		sessionID := ensureSession(c)

		navigate, msg := storefront.SubmitQuery(c.Request.Context(), sessionID, c.PostForm("query"))
		switch {
		case navigate:
			c.Redirect(http.StatusSeeOther, "/results")
		case msg != "":
			c.Redirect(http.StatusSeeOther, "/?msg="+msg)
		default:
			c.Redirect(http.StatusSeeOther, "/")
		}
	})

	r.POST("/search/image", func(c *gin.Context) {
		sessionID := ensureSession(c)

		file, err := c.FormFile("image")
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/?msg="+services.MsgNotImage)
			return
		}

		f, err := file.Open()
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/?msg="+services.MsgImageFail)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/?msg="+services.MsgImageFail)
			return
		}

		err = storefront.ImageSearch(c.Request.Context(), sessionID, file.Filename, data)
		switch {
		case err == nil:
			c.Redirect(http.StatusSeeOther, "/")
		case services.IsNotImage(err):
			c.Redirect(http.StatusSeeOther, "/?msg="+services.MsgNotImage)
		case errors.Is(err, backend.ErrNotReady):
			c.Redirect(http.StatusSeeOther, "/?msg="+services.MsgNotReady)
		case errors.Is(err, backend.ErrNoMatches):
			c.Redirect(http.StatusSeeOther, "/?msg="+services.MsgNoMatches)
		default:
			c.Redirect(http.StatusSeeOther, "/?msg="+services.MsgImageFail)
		}
	})

	r.POST("/search/image/clear", func(c *gin.Context) {
		sessionID := ensureSession(c)
		storefront.ClearImageSearch(sessionID)
		c.Redirect(http.StatusSeeOther, "/")
	})

	r.POST("/search/clear", func(c *gin.Context) {
		sessionID := ensureSession(c)
		storefront.ClearSearch(sessionID)
		c.Redirect(http.StatusSeeOther, "/")
	})

	r.POST("/session/end", func(c *gin.Context) {
		sessionID := ensureSession(c)
		storefront.EndSession(sessionID)
		c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
		c.Redirect(http.StatusSeeOther, "/")
	})

	r.GET("/previews/:id", func(c *gin.Context) {
		data, contentType, err := storefront.OpenPreview(c.Param("id"))
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	})

	// AI results view. Reached only via the in-app flow; a direct visit
	// or a reload after the session expired shows the fallback.
	r.GET("/results", func(c *gin.Context) {
		sessionID := ensureSession(c)

		view := storefront.RecommendationView(c.Request.Context(), sessionID)
		if view == nil {
			c.HTML(http.StatusOK, "results_empty", nil)
			return
		}
		c.HTML(http.StatusOK, "results", view)
	})

	r.GET("/product/:id", func(c *gin.Context) {
		product, err := storefront.ProductByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.HTML(http.StatusNotFound, "notfound", gin.H{"Message": "Product not found"})
			return
		}
		c.HTML(http.StatusOK, "product", services.NewProductPage(*product))
	})

	// Enhanced health check with cache and backend status
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "healthy",
			"service": "shopsphere-web",
			"version": "1.0.0",
		}

		if redisCache != nil && redisCache.IsAvailable() {
			health["cache"] = "redis connected"
		} else {
			health["cache"] = "redis unavailable"
		}

		health["image_search_ready"] = storefront.ImageSearchReady(c.Request.Context())

		c.JSON(http.StatusOK, health)
	})

	// Cache stats endpoint
	r.GET("/cache/stats", func(c *gin.Context) {
		if redisCache == nil {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error: "cache not available",
				Code:  http.StatusServiceUnavailable,
			})
			return
		}
		c.JSON(http.StatusOK, redisCache.GetStats())
	})

	// Cache flush endpoint (for testing)
	r.DELETE("/cache/flush", func(c *gin.Context) {
		if redisCache == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "cache not available",
			})
			return
		}

		if err := redisCache.FlushCache(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to flush cache",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "cache flushed successfully",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "notfound", gin.H{"Message": "The page you are looking for does not exist"})
	})

	log.Printf("Starting storefront on :%s (backend %s)", port, backendURL)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// ensureSession reads the session cookie, issuing one on first contact.
func ensureSession(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(sessionCookie, id, 3600, "/", "", false, true)
	return id
}

func getRateLimiter(ip string) *rate.Limiter {
	rateMutex.RLock()
	limiter, exists := rateLimiters[ip]
	rateMutex.RUnlock()

	if !exists {
		rateMutex.Lock()
		limiter = rate.NewLimiter(rate.Limit(10), 20) // 10 req/sec, burst 20
		rateLimiters[ip] = limiter
		rateMutex.Unlock()
	}

	return limiter
}

func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := getRateLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests from your IP",
				"retry_after": "1 second",
				"ip":          ip,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
