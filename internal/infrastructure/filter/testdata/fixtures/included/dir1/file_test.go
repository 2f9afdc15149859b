package fixtures
