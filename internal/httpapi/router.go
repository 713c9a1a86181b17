package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))
	// Concurrency limiter, matching the original's bounded request
	// concurrency in front of a single-browser-per-profile backend.
	r.Use(middleware.Throttle(32))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.actionLogMiddleware)

	r.Get("/api/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.apiKeyAuth)

		r.Route("/api/profiles", func(r chi.Router) {
			r.Get("/", s.handleListProfiles)
			r.Post("/", s.handleCreateProfile)

			r.Route("/{profileID}", func(r chi.Router) {
				r.Get("/", s.handleGetProfile)
				r.Put("/", s.handleUpdateProfile)
				r.Delete("/", s.handleDeleteProfile)
			})
		})

		r.Post("/api/launch/{profileID}", s.handleLaunch)
		r.Post("/api/kill/{profileID}", s.handleKill)
		r.Get("/api/running", s.handleRunning)

		r.Route("/api/browser/{profileID}", func(r chi.Router) {
			r.Post("/navigate", s.handleNavigate)
			r.Post("/navigate_wait", s.handleNavigateWait)
			r.Get("/get_url", s.handleGetURL)
			r.Get("/get_title", s.handleGetTitle)
			r.Post("/reload", s.handleReload)
			r.Post("/go_back", s.handleBack)
			r.Post("/go_forward", s.handleForward)

			r.Post("/click", s.handleClick)
			r.Post("/double_click", s.handleDoubleClick)
			r.Post("/right_click", s.handleRightClick)
			r.Post("/hover", s.handleHover)
			r.Post("/click_at", s.handleClickAt)
			r.Post("/drag", s.handleDrag)
			r.Post("/focus", s.handleFocus)
			r.Post("/type_text", s.handleType)
			r.Post("/slow_type", s.handleSlowType)
			r.Post("/press_key", s.handleKey)
			r.Post("/select_option", s.handleSelect)
			r.Post("/upload_file", s.handleUploadFile)

			r.Post("/scroll", s.handleScrollDirection)
			r.Post("/scroll_element", s.handleScroll)
			r.Post("/scroll_into_view", s.handleScrollIntoView)

			r.Post("/wait_for_element", s.handleWaitForElement)
			r.Post("/wait_for_text", s.handleWaitForText)
			r.Post("/wait_for_url", s.handleWaitForURL)
			r.Post("/wait_for_navigation", s.handleWaitForNavigation)
			r.Post("/wait_for_new_tab", s.handleWaitForNewTab)

			r.Get("/screenshot", s.handleScreenshot)
			r.Get("/screenshot_element", s.handleScreenshotElement)
			r.Get("/print_to_pdf", s.handlePrintToPDF)
			r.Get("/html", s.handleHTML)
			r.Get("/text", s.handlePageText)
			r.Post("/eval", s.handleEval)
			r.Post("/evaluate_js", s.handleEval)
			r.Get("/computed_style", s.handleComputedStyle)
			r.Get("/get_dom_context", s.handleGetDOMContext)

			r.Get("/ax_tree", s.handleAXTree)
			r.Get("/page_state", s.handlePageState)
			r.Post("/click_ref", s.handleClickRef)
			r.Post("/type_ref", s.handleTypeRef)
			r.Post("/focus_ref", s.handleFocusRef)

			r.Get("/list_tabs", s.handleListTabs)
			r.Post("/new_tab", s.handleNewTab)
			r.Post("/switch_tab", s.handleSwitchTab)
			r.Post("/close_tab", s.handleCloseTab)

			r.Get("/get_frames", s.handleGetFrames)
			r.Post("/switch_frame", s.handleSwitchFrame)
			r.Post("/main_frame", s.handleMainFrame)

			r.Get("/get_storage", s.handleGetStorage)
			r.Post("/set_storage_item", s.handleSetStorageItem)
			r.Delete("/remove_storage_item", s.handleRemoveStorageItem)
			r.Delete("/clear_storage", s.handleClearStorage)

			r.Post("/block_url", s.handleBlockURL)
			r.Post("/mock_url", s.handleMockURL)
			r.Delete("/clear_intercepts", s.handleClearIntercepts)

			r.Get("/get_cookies", s.handleCookiesList)
			r.Post("/set_cookie", s.handleCookiesSet)
			r.Post("/set_cookie_full", s.handleCookiesSetFull)
			r.Delete("/delete_cookies", s.handleCookiesDelete)
			r.Get("/cookies/export", s.handleCookiesExport)
			r.Post("/cookies/import", s.handleCookiesImport)

			r.Post("/handle_dialog", s.handleDialog)
			r.Post("/emulate", s.handleEmulate)

			r.Post("/tap", s.handleTap)
			r.Post("/swipe", s.handleSwipe)

			r.Post("/enable_console_capture", s.handleEnableConsoleCapture)
			r.Get("/get_console_logs", s.handleConsole)
			r.Delete("/clear_console_logs", s.handleConsoleClear)
			r.Get("/get_network_log", s.handleNetwork)
			r.Delete("/clear_network_log", s.handleNetworkClear)
		})

		r.Get("/api/action_log", s.handleActionLog)
		r.Delete("/api/action_log", s.handleActionLogClear)

		r.Get("/api/ws", s.handleWebSocket)
	})

	return r
}
