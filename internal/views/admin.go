package views

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/srich3/portfolio/internal/store"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" //nolint:revive,stylecheck
)

func (r Renderer) adminNav() g.Node {
	return Nav(Class("admin-nav"),
		A(Href(r.URL("admin/dashboard")), g.Text("Dashboard")),
		A(Href(r.URL("admin/visitors")), g.Text("Visitors")),
		A(Href(r.URL("admin/export/stats")), g.Text("Export")),
		A(Href(r.URL("privacy")), g.Text("Privacy")),
		A(Href(r.URL("admin/logout")), g.Text("Log out")),
	)
}

func (r Renderer) AdminLogin(errMsg string) g.Node {
	return r.document("Admin Login",
		Main(Class("admin"),
			H1(g.Text("Admin Login")),
			g.If(errMsg != "", P(Class("form-notice"), Role("alert"), g.Text(errMsg))),
			Form(Method("post"), Action(r.URL("admin/login")), Class("contact-form"),
				Div(Class("field"),
					Label(For("username"), g.Text("Username")),
					Input(ID("username"), Name("username"), Type("text"), Required()),
				),
				Div(Class("field"),
					Label(For("password"), g.Text("Password")),
					Input(ID("password"), Name("password"), Type("password"), Required()),
				),
				Button(Type("submit"), Class("btn-primary"), g.Text("Log in")),
			),
		),
	)
}

func (r Renderer) AdminError(errMsg string) g.Node {
	return r.document("Admin Error",
		Main(Class("admin"), r.adminNav(), H1(g.Text("Something went wrong")), P(g.Text(errMsg))),
	)
}

func statCard(label string, value int64) g.Node {
	return Div(Class("stat"),
		Span(Class("stat-value"), g.Text(humanize.Comma(value))),
		Span(Class("stat-label"), g.Text(label)),
	)
}

// AdminDashboard shows the analytics summary. now anchors the relative times.
func (r Renderer) AdminDashboard(stats store.Stats, sessions int, now time.Time) g.Node {
	return r.document("Admin Dashboard",
		Main(Class("admin"),
			r.adminNav(),
			H1(g.Text("Dashboard")),
			Div(Class("grid stats"),
				statCard("Total visitors", stats.TotalVisitors),
				statCard("Unique visitors", stats.UniqueVisitors),
				statCard("Visitors today", stats.VisitorsToday),
				statCard("Visitors this week", stats.VisitorsThisWeek),
				statCard("Sections revealed", stats.TotalReveals),
				statCard("Live page sessions", int64(sessions)),
			),
			H2(g.Text("Most viewed sections")),
			Table(
				THead(Tr(Th(g.Text("Section")), Th(g.Text("Reveals")))),
				TBody(g.Map(stats.TopSections, func(section store.SectionStat) g.Node {
					return Tr(Td(g.Text(section.Element)), Td(g.Text(humanize.Comma(section.Reveals))))
				})),
			),
			H2(g.Text("Recent visitors")),
			r.visitorTable(stats.RecentVisitors, now),
		),
	)
}

func (r Renderer) AdminVisitors(visits []store.Visit, now time.Time) g.Node {
	return r.document("Visitors",
		Main(Class("admin"),
			r.adminNav(),
			H1(g.Text("Visitors")),
			P(g.Text(strconv.Itoa(len(visits))+" most recent page views")),
			r.visitorTable(visits, now),
		),
	)
}

func (r Renderer) visitorTable(visits []store.Visit, now time.Time) g.Node {
	return Table(Class("visitors"),
		THead(Tr(Th(g.Text("Visitor")), Th(g.Text("Path")), Th(g.Text("User agent")), Th(g.Text("When")))),
		TBody(g.Map(visits, func(visit store.Visit) g.Node {
			return Tr(
				Td(Code(g.Text(visit.HashedIP))),
				Td(g.Text(visit.Path)),
				Td(g.Text(visit.UserAgent)),
				Td(g.Attr("title", visit.CreatedOn.UTC().Format(time.RFC3339)),
					g.Text(humanize.RelTime(visit.CreatedOn, now, "ago", "from now"))),
			)
		})),
	)
}

func (r Renderer) Privacy() g.Node {
	return r.document("Privacy Policy",
		Main(Class("admin"),
			H1(g.Text("Privacy Policy")),
			P(g.Text("This site records page views with a salted hash of your IP address, never the address itself.")),
			P(g.Text("Requests sent with the Do Not Track header are not recorded.")),
			P(g.Text("The contact form does not send or store anything you type.")),
			P(g.Text("Analytics older than the retention window are deleted automatically.")),
		),
	)
}
