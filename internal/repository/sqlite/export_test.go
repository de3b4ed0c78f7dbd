package sqlite

var Bootstrap = bootstrap
