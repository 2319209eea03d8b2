package db

var InsertFavourite = insertFavourite
