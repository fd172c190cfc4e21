// Package insights answers analytics questions about outreach
// entities: overviews, trends, status breakdowns, rankings, and
// period-over-period benchmarks, all computed from daily rollup rows.
//
// The service depends on the narrow interfaces defined in this package
// and should never import from api/. Repository implementations live
// in repository/postgres/, caching in cache/, archival in storage/.
package insights
