package routes

import (
	"net/http"

	"kitabi/account"
	"kitabi/attendance"
	"kitabi/auth"
	"kitabi/book"
	"kitabi/category"
	"kitabi/dashboard"
	"kitabi/filemgr"
	"kitabi/globals"
	"kitabi/middleware"
	"kitabi/notification"
	"kitabi/order"
	"kitabi/ratelim"
	"kitabi/school"
	"kitabi/user"
	"kitabi/visit"
	"kitabi/zone"

	"github.com/julienschmidt/httprouter"
)

// admin wraps a handler so only the admin role reaches it. Always used
// inside middleware.Authenticate. Collection routes live under the plural
// path, single-document routes under the singular one, so httprouter never
// sees a static segment competing with a wildcard.
var admin = middleware.RequireRoles(globals.RoleAdmin)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/uploads/*filepath", http.Dir(filemgr.Dir()))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/login", rl.Limit(auth.Login))
}

func AddUserRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/users", rl.Limit(middleware.Authenticate(admin(user.CreateUser))))
	router.GET("/api/users", middleware.Authenticate(admin(user.GetUsers)))
	router.GET("/api/users/list", middleware.Authenticate(user.GetUserList))
	router.GET("/api/users/me", middleware.Authenticate(user.GetProfile))
	router.GET("/api/user/:id", middleware.Authenticate(admin(user.GetUserStats)))
	router.PUT("/api/user/:id", middleware.Authenticate(admin(user.UpdateUser)))
	router.DELETE("/api/user/:id", middleware.Authenticate(admin(user.DeleteUser)))
	router.PATCH("/api/user/:id/status", middleware.Authenticate(admin(user.ToggleStatus)))
	router.PATCH("/api/user/:id/fcm-token", middleware.Authenticate(user.UpdateFcmToken))
}

func AddSchoolRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/schools", rl.Limit(middleware.Authenticate(school.CreateSchool)))
	router.GET("/api/schools", middleware.Authenticate(school.GetSchools))
	router.GET("/api/school/:id", middleware.Authenticate(school.GetSchool))
	router.PUT("/api/school/:id", middleware.Authenticate(school.UpdateSchool))
	router.DELETE("/api/school/:id", middleware.Authenticate(admin(school.DeleteSchool)))
}

func AddZoneRoutes(router *httprouter.Router) {
	router.POST("/api/zones", middleware.Authenticate(admin(zone.CreateZone)))
	router.GET("/api/zones", middleware.Authenticate(zone.GetZones))
	router.GET("/api/zones/details", middleware.Authenticate(admin(zone.GetZonesWithDetails)))
	router.GET("/api/zone/:id", middleware.Authenticate(zone.GetZone))
	router.PUT("/api/zone/:id", middleware.Authenticate(admin(zone.UpdateZone)))
	router.DELETE("/api/zone/:id", middleware.Authenticate(admin(zone.DeleteZone)))
}

func AddCategoryRoutes(router *httprouter.Router) {
	router.POST("/api/categories", middleware.Authenticate(admin(category.CreateCategory)))
	router.GET("/api/categories", middleware.Authenticate(category.GetCategories))
	router.GET("/api/categories/stats", middleware.Authenticate(category.GetCategoriesWithStats))
	router.GET("/api/categories/list", middleware.Authenticate(category.GetCategoryList))
	router.GET("/api/category/:id", middleware.Authenticate(category.GetCategory))
	router.PUT("/api/category/:id", middleware.Authenticate(admin(category.UpdateCategory)))
	router.DELETE("/api/category/:id", middleware.Authenticate(admin(category.DeleteCategory)))
}

func AddBookRoutes(router *httprouter.Router) {
	router.POST("/api/books", middleware.Authenticate(admin(book.CreateBook)))
	router.GET("/api/books", middleware.Authenticate(book.GetBooks))
	router.GET("/api/books/category/:id", middleware.Authenticate(book.GetBooksByCategory))
	router.GET("/api/book/:id", middleware.Authenticate(book.GetBook))
	router.PUT("/api/book/:id", middleware.Authenticate(admin(book.UpdateBook)))
	router.DELETE("/api/book/:id", middleware.Authenticate(admin(book.DeleteBook)))
}

func AddOrderRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/orders", rl.Limit(middleware.Authenticate(order.CreateOrder)))
	router.GET("/api/orders", middleware.Authenticate(admin(order.GetOrders)))
	router.GET("/api/orders/my", middleware.Authenticate(order.GetMyOrders))
	router.GET("/api/orders/my/export", middleware.Authenticate(order.ExportMyOrders))
	router.GET("/api/orders/export", middleware.Authenticate(admin(order.ExportOrders)))
	router.GET("/api/orders/user/:id", middleware.Authenticate(admin(order.GetOrdersByUser)))
	router.POST("/api/orders/payment", rl.Limit(middleware.Authenticate(order.ProcessPayment)))
	router.GET("/api/order/:id", middleware.Authenticate(order.GetOrder))
	router.GET("/api/order/:id/invoice", middleware.Authenticate(order.GetInvoice))
	router.PUT("/api/order/:id", middleware.Authenticate(order.UpdateOrder))
	router.DELETE("/api/order/:id", middleware.Authenticate(admin(order.DeleteOrder)))
}

func AddVisitRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/visits", rl.Limit(middleware.Authenticate(visit.CreateVisit)))
	router.GET("/api/visits", middleware.Authenticate(admin(visit.GetVisits)))
	router.GET("/api/visits/my", middleware.Authenticate(visit.GetMyVisits))
	router.GET("/api/visits/my/monthly", middleware.Authenticate(visit.GetMyMonthlyVisits))
	router.GET("/api/visits/zone", middleware.Authenticate(visit.GetVisitsByZone))
	router.GET("/api/visits/summary", middleware.Authenticate(visit.GetVisitSummary))
	router.GET("/api/visits/user/:id", middleware.Authenticate(admin(visit.GetVisitsByUser)))
	router.GET("/api/visits/school/:id", middleware.Authenticate(visit.GetVisitsBySchool))
	router.GET("/api/visits/pair/:userId/:schoolId", middleware.Authenticate(visit.GetVisitByUserAndSchool))
	router.GET("/api/visit/:id", middleware.Authenticate(visit.GetVisit))
	router.GET("/api/visit/:id/summary", middleware.Authenticate(visit.GetVisitSummary))
	router.PUT("/api/visit/:id", middleware.Authenticate(visit.UpdateVisit))
	router.DELETE("/api/visit/:id", middleware.Authenticate(admin(visit.DeleteVisit)))
}

func AddDashboardRoutes(router *httprouter.Router) {
	router.GET("/api/dashboard/stats", middleware.Authenticate(admin(dashboard.GetStats)))
	router.GET("/api/dashboard/my/today", middleware.Authenticate(dashboard.GetMyTodayStats))
}

func AddAttendanceRoutes(router *httprouter.Router) {
	router.POST("/api/attendance/mark", middleware.Authenticate(attendance.MarkAttendance))
	router.GET("/api/attendance/my", middleware.Authenticate(attendance.GetMyMonthly))
}

func AddNotificationRoutes(router *httprouter.Router, sender *notification.Sender) {
	router.POST("/api/notifications/send", middleware.Authenticate(admin(sender.SendToUser)))
	router.GET("/api/notifications/my", middleware.Authenticate(notification.GetMyNotifications))
	router.PATCH("/api/notifications/read-all", middleware.Authenticate(notification.MarkAllRead))
	router.PATCH("/api/notification/:id/read", middleware.Authenticate(notification.MarkRead))
	router.GET("/api/notifications/ws", middleware.Authenticate(notification.WebSocketHandler(sender.Hub)))
}

func AddAccountRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/account/bulk/:schoolId", rl.Limit(middleware.Authenticate(admin(account.BulkImport))))
	router.GET("/api/account/school/:schoolId", middleware.Authenticate(account.GetBySchool))
	router.DELETE("/api/account/entry/:id", middleware.Authenticate(admin(account.DeleteEntry)))
}
