package guard

// DefaultRoutes is the campus app's route table. The login page is
// guest-only, everything behind it needs a signed-in identity, and the root
// lands on login.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Name: "root", RedirectTo: "/login"},
		{Path: "/login", Name: "login", RequiresGuest: true},
		{Path: "/home", Name: "home", RequiresAuth: true},
		{Path: "/popular", Name: "popular", RequiresAuth: true},
		{Path: "/event", Name: "event", RequiresAuth: true},
		{Path: "/store/{id}", Name: "store", RequiresAuth: true},
		{Path: "/cafeteria", Name: "cafeteria", RequiresAuth: true},
		{Path: "/cafe", Name: "cafe", RequiresAuth: true},
		{Path: "/cafe/{id}", Name: "cafe-store", RequiresAuth: true},
		{Path: "/cafe/{id}/menu/{slug}", Name: "cafe-order", RequiresAuth: true},
		{Path: "/cafeteria/huseng", Name: "cafeteria-huseng", RequiresAuth: true},
		{Path: "/cafeteria/huseng/{slug}", Name: "cafeteria-counter", RequiresAuth: true},
		{Path: "/cafeteria/huseng/{slug}/menu/{menu}", Name: "cafeteria-order", RequiresAuth: true},
		{Path: "/coupons", Name: "coupons", RequiresAuth: true},
		{Path: "/orders", Name: "orders", RequiresAuth: true},
		{Path: "/mypage", Name: "mypage", RequiresAuth: true},
		{Path: "/notifications", Name: "notifications", RequiresAuth: true},
		{Path: "/recommend", Name: "recommend", RequiresAuth: true},
		{Path: "/recommend/{filter}", Name: "recommend", RequiresAuth: true},
	}
}
