package handlers

// @title Daily Sales & Expenses API
// @version 1.0
// @description Records sales and expenses and reports profit, monthly trends and top products, categories and customers.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @tag.name reports
// @tag.description Profit, expense and ranking reports over a date range

// @tag.name sales
// @tag.description Recording, deleting and valuing sales

// @tag.name expenses
// @tag.description Recording and deleting expenses

// @tag.name products
// @tag.description Product catalogue

// @tag.name customers
// @tag.description Customer records
